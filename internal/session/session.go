// Package session tracks per-user transient state: the navigation cursor
// into the content tree, the admin flag, the current conversation stage, and
// any in-flight quiz attempt or authoring context.
package session

import (
	"github.com/abhisek/lorebot/internal/quiz"
)

// Stage is the user's position in the conversation state machine. Browsing
// happens in StageMenu; the remaining stages are the authoring and quiz
// flows, each advanced by exactly one inbound message or upload.
type Stage int

const (
	StageMenu Stage = iota
	StageAddItem
	StageAddNavigation
	StageAddArticleName
	StageAddBlockType
	StageAddTextBlock
	StageAddImageBlock
	StageAddVideoBlock
	StageAddQuizName
	StageAddQuizPayload
	StageRemoveItem
	StageAsking
	StageDone
)

// Session is the transient state of one user. It is created on first contact
// and lives until explicit reset; everything durable about the user lives in
// the score ledger instead.
type Session struct {
	// ID is a unique handle for this session's lifetime, for log correlation.
	ID string

	// Identity is the stable external user identity.
	Identity int64

	// FirstName is a display name supplied by the transport.
	FirstName string

	// Admin gates the authoring stages.
	Admin bool

	// History is the cursor: the path of navigation names from the root to
	// the current scope. It always denotes a live path; names invalidated
	// by concurrent tree mutations are truncated away on the next move.
	History []string

	// LastArticle is the article currently being authored.
	LastArticle string

	// Stage is the current conversation stage.
	Stage Stage

	// PendingQuiz is the quiz name captured while awaiting its payload.
	PendingQuiz string

	// Attempt is the in-flight quiz attempt, if any. Dropped wholesale on
	// completion or reset; an orphaned attempt goes with its session.
	Attempt *quiz.Attempt
}
