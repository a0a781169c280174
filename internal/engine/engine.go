// Package engine drives the conversation: it resolves inbound text and
// uploads against each user's session stage and produces replies. All
// events for one user are handled strictly in arrival order.
package engine

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/abhisek/lorebot/internal/content"
	"github.com/abhisek/lorebot/internal/quiz"
	"github.com/abhisek/lorebot/internal/scores"
	"github.com/abhisek/lorebot/internal/session"
)

// MediaStore persists uploaded binaries and returns document references
// for them.
type MediaStore interface {
	SaveImage(name string, r io.Reader) (string, error)
	SaveVideo(name string, r io.Reader) (string, error)
}

// Engine coordinates the content store, session store, quiz engine and
// score ledger behind a single Handle entry point.
type Engine struct {
	content  *content.Store
	sessions *session.Store
	quizzes  *quiz.Engine
	ledger   scores.Ledger
	media    MediaStore
	log      *log.Logger

	mu      sync.Mutex
	inboxes map[int64]chan func()
	closed  bool
}

// New builds an Engine over its collaborators. logger may be nil.
func New(store *content.Store, sessions *session.Store, quizzes *quiz.Engine, ledger scores.Ledger, media MediaStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		content:  store,
		sessions: sessions,
		quizzes:  quizzes,
		ledger:   ledger,
		media:    media,
		log:      logger,
		inboxes:  make(map[int64]chan func()),
	}
}

// Handle processes one inbound text message from the given identity.
func (e *Engine) Handle(ctx context.Context, identity int64, firstName, text string) (Reply, error) {
	return e.dispatch(ctx, identity, func(s *session.Session) (Reply, error) {
		return e.handleText(ctx, s, text)
	}, firstName)
}

// HandleUpload processes one inbound binary payload from the given identity.
func (e *Engine) HandleUpload(ctx context.Context, identity int64, firstName string, up Upload) (Reply, error) {
	return e.dispatch(ctx, identity, func(s *session.Session) (Reply, error) {
		return e.handleUpload(ctx, s, up)
	}, firstName)
}

// Reset discards the identity's session. The next event starts a fresh one
// at the menu stage with empty history.
func (e *Engine) Reset(ctx context.Context, identity int64) error {
	_, err := e.dispatch(ctx, identity, func(s *session.Session) (Reply, error) {
		e.sessions.Reset(identity)
		return Reply{}, nil
	}, "")
	return err
}

// Scores returns every recorded result for the identity, ordered by quiz
// name.
func (e *Engine) Scores(ctx context.Context, identity int64) ([]scores.Result, error) {
	return e.ledger.AllForUser(ctx, identity)
}

// Close stops all per-user workers. Pending events finish first.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for _, ch := range e.inboxes {
		close(ch)
	}
}
