package engine

import (
	"context"
	"errors"

	"github.com/abhisek/lorebot/internal/session"
)

// inboxSize bounds how many events per user may queue before senders block.
const inboxSize = 32

// ErrClosed is returned for events arriving after Close.
var ErrClosed = errors.New("engine: closed")

type outcome struct {
	reply Reply
	err   error
}

// dispatch runs fn on the identity's worker goroutine. One worker exists
// per identity, so a user's events never interleave even when the
// transport delivers them concurrently.
func (e *Engine) dispatch(ctx context.Context, identity int64, fn func(*session.Session) (Reply, error), firstName string) (Reply, error) {
	inbox, err := e.inboxFor(identity)
	if err != nil {
		return Reply{}, err
	}

	done := make(chan outcome, 1)
	task := func() {
		s := e.sessions.Resolve(identity, firstName)
		reply, err := fn(s)
		done <- outcome{reply: reply, err: err}
	}

	select {
	case inbox <- task:
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case out := <-done:
		return out.reply, out.err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

func (e *Engine) inboxFor(identity int64) (chan func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	inbox, ok := e.inboxes[identity]
	if !ok {
		inbox = make(chan func(), inboxSize)
		e.inboxes[identity] = inbox
		go worker(inbox)
	}
	return inbox, nil
}

func worker(inbox chan func()) {
	for task := range inbox {
		task()
	}
}
