// Package quiz runs scored multiple-choice attempts against quiz nodes of
// the content tree. An attempt is built from a snapshot copy of the quiz's
// questions, so presentation-order shuffling never touches the shared tree,
// and only the final score outlives it.
package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/abhisek/lorebot/internal/content"
)

// Recorder persists a finished attempt's score. Satisfied by the scores
// ledger.
type Recorder interface {
	Put(ctx context.Context, userID int64, quizName, score string) error
}

// Prompt is one question as presented to a user: the prompt text plus the
// answer labels in shuffled display order.
type Prompt struct {
	Question string
	Answers  []string
}

// Feedback is the outcome of one submitted answer. Hint is set only for
// incorrect answers.
type Feedback struct {
	Correct bool
	Hint    string
}

// Result is the final tally of a finished attempt.
type Result struct {
	Earned float64
	Total  float64
}

// String renders the tally in the "<earned>/<total>" ledger form.
func (r Result) String() string {
	return formatPoints(r.Earned) + "/" + formatPoints(r.Total)
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Attempt is one in-flight run of a quiz by one user. It is transient: the
// session owns it and drops it on completion, cancellation, or reset.
type Attempt struct {
	QuizName string
	Total    float64
	Earned   float64

	remaining []content.Question
	current   *content.Question
}

// Active reports whether a question is currently awaiting an answer.
func (a *Attempt) Active() bool {
	return a.current != nil
}

// Engine sequences questions, checks answers, and records final scores.
type Engine struct {
	rec     Recorder
	log     *log.Logger
	shuffle func([]content.Answer)
}

// Option configures an Engine.
type Option func(*Engine)

// WithShuffle overrides the answer shuffling function. Tests use it to pin
// presentation order.
func WithShuffle(fn func([]content.Answer)) Option {
	return func(e *Engine) { e.shuffle = fn }
}

// NewEngine creates a quiz engine persisting results through rec.
func NewEngine(rec Recorder, logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		rec: rec,
		log: logger,
		shuffle: func(answers []content.Answer) {
			rand.Shuffle(len(answers), func(i, j int) {
				answers[i], answers[j] = answers[j], answers[i]
			})
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start builds an attempt for the named quiz inside the given scope. A name
// that does not resolve to a quiz returns content.ErrNotFound and no attempt.
// The quiz's questions are deep-copied into the attempt.
func (e *Engine) Start(tree *content.Tree, scope []string, name string) (*Attempt, error) {
	quiz, err := tree.QuizByName(scope, name)
	if err != nil {
		return nil, err
	}

	a := &Attempt{
		QuizName:  name,
		Total:     quiz.TotalScore,
		remaining: make([]content.Question, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		a.remaining = append(a.remaining, q.Clone())
	}
	e.log.Info("quiz started", "quiz", name, "questions", len(a.remaining))
	return a, nil
}

// Advance dequeues and presents the next question, or finishes the attempt
// when none remain. On finish the score is persisted for userID; a persist
// failure is returned to the caller, not dropped.
func (e *Engine) Advance(ctx context.Context, a *Attempt, userID int64) (*Prompt, *Result, error) {
	if len(a.remaining) == 0 {
		a.current = nil
		res := Result{Earned: a.Earned, Total: a.Total}
		if err := e.rec.Put(ctx, userID, a.QuizName, res.String()); err != nil {
			return nil, nil, fmt.Errorf("persist quiz score: %w", err)
		}
		e.log.Info("quiz finished", "quiz", a.QuizName, "user", userID, "score", res.String())
		return nil, &res, nil
	}

	q := a.remaining[0]
	a.remaining = a.remaining[1:]
	// q is already a copy; shuffling is presentation-only.
	e.shuffle(q.Answers)
	a.current = &q

	prompt := &Prompt{Question: q.Prompt, Answers: make([]string, 0, len(q.Answers))}
	for _, ans := range q.Answers {
		prompt.Answers = append(prompt.Answers, ans.Label)
	}
	return prompt, nil, nil
}

// Submit checks text against the current question. The first answer whose
// label matches wins; authored duplicates are not deduplicated here. A
// correct match adds the question's points to the running score; an
// incorrect one carries the question's hint back to the user.
func (e *Engine) Submit(a *Attempt, text string) Feedback {
	if a.current == nil {
		return Feedback{}
	}
	for _, ans := range a.current.Answers {
		if ans.Label != text {
			continue
		}
		if ans.Correct {
			a.Earned += a.current.Points
			return Feedback{Correct: true}
		}
		break
	}
	return Feedback{Hint: a.current.Hint}
}
