package engine

import (
	"context"
	"io"

	"github.com/abhisek/lorebot/internal/content"
	"github.com/abhisek/lorebot/internal/session"
)

// Menu commands shown to admins alongside the scope listing.
const (
	cmdAdd    = "Add"
	cmdDelete = "Delete"

	cmdNavigation = "Navigation"
	cmdArticle    = "Article"
	cmdQuiz       = "Quiz"

	cmdText  = "Text"
	cmdImage = "Image"
	cmdVideo = "Video"
)

const (
	msgSelectValue   = "Select value"
	msgCouldNotApply = "Could not complete the operation"
)

func (e *Engine) handleText(ctx context.Context, s *session.Session, text string) (Reply, error) {
	switch s.Stage {
	case session.StageMenu:
		return e.handleMenu(ctx, s, text)
	case session.StageAddItem:
		return e.handleAddItem(s, text), nil
	case session.StageAddNavigation:
		return e.handleAddNavigation(ctx, s, text), nil
	case session.StageAddArticleName:
		return e.handleAddArticleName(ctx, s, text), nil
	case session.StageAddBlockType:
		return e.handleAddBlockType(s, text), nil
	case session.StageAddTextBlock:
		return e.handleAddTextBlock(ctx, s, text), nil
	case session.StageAddImageBlock:
		return Reply{Text: "Upload an image with a caption", ClearKeyboard: true}, nil
	case session.StageAddVideoBlock:
		return Reply{Text: "Upload a video with a caption", ClearKeyboard: true}, nil
	case session.StageAddQuizName:
		return e.handleAddQuizName(s, text), nil
	case session.StageAddQuizPayload:
		return Reply{Text: "Upload a file with quiz questions", ClearKeyboard: true}, nil
	case session.StageRemoveItem:
		return e.handleRemoveItem(ctx, s, text), nil
	case session.StageAsking:
		return e.handleAnswer(ctx, s, text)
	case session.StageDone:
		// Starting a quiz never pushed history, so leaving it re-renders
		// the scope the quiz lives in.
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgSelectValue), nil
	default:
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgSelectValue), nil
	}
}

// handleMenu classifies free input against the current tree: a known
// navigation name descends, an article renders, a quiz starts, the back
// token ascends, and anything else re-renders the current scope.
func (e *Engine) handleMenu(ctx context.Context, s *session.Session, text string) (Reply, error) {
	if s.Admin {
		switch text {
		case cmdAdd:
			s.Stage = session.StageAddItem
			return addItemReply(), nil
		case cmdDelete:
			s.Stage = session.StageRemoveItem
			return e.removeItemReply(s), nil
		}
	}

	tree := e.content.Tree()
	if text == session.BackToken {
		return e.menuMove(s, text, msgSelectValue), nil
	}

	kind, known := tree.Lookup(text)
	if !known {
		return e.menuMove(s, text, msgSelectValue), nil
	}

	switch kind {
	case content.KindNavigation:
		return e.menuMove(s, text, msgSelectValue), nil
	case content.KindArticle:
		blocks, err := tree.Article(s.History, text)
		if err != nil {
			// The name exists somewhere in the tree but not in this
			// scope, so it is not selectable from here.
			return e.menuMove(s, "", msgSelectValue), nil
		}
		reply := e.menuMove(s, "", text)
		reply.Blocks = blocks
		return reply, nil
	case content.KindQuiz:
		return e.startQuiz(ctx, s, text)
	default:
		return e.menuMove(s, "", msgSelectValue), nil
	}
}

func (e *Engine) startQuiz(ctx context.Context, s *session.Session, name string) (Reply, error) {
	tree := e.content.Tree()
	attempt, err := e.quizzes.Start(tree, s.History, name)
	if err != nil {
		return e.menuMove(s, "", msgSelectValue), nil
	}
	s.Attempt = attempt
	s.Stage = session.StageAsking
	return e.advanceQuiz(ctx, s, "")
}

// handleAnswer grades the reply against the current question and moves the
// attempt forward.
func (e *Engine) handleAnswer(ctx context.Context, s *session.Session, text string) (Reply, error) {
	if s.Attempt == nil {
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgSelectValue), nil
	}
	if !s.Attempt.Active() {
		// The last answer was already graded but the score write failed.
		// Retry persistence instead of regrading.
		return e.advanceQuiz(ctx, s, "")
	}
	fb := e.quizzes.Submit(s.Attempt, text)
	verdict := "Correct"
	if !fb.Correct {
		verdict = "Incorrect"
		if fb.Hint != "" {
			verdict += "\n" + fb.Hint
		}
	}
	return e.advanceQuiz(ctx, s, verdict)
}

// advanceQuiz presents the next question or, when the queue is empty,
// persists the result and closes the attempt. A failed write keeps the
// attempt so the next message retries persistence.
func (e *Engine) advanceQuiz(ctx context.Context, s *session.Session, prefix string) (Reply, error) {
	prompt, result, err := e.quizzes.Advance(ctx, s.Attempt, s.Identity)
	if err != nil {
		return Reply{}, err
	}
	if result != nil {
		s.Attempt = nil
		s.Stage = session.StageDone
		text := "Quiz finished.\nYour score is: " + result.String()
		if prefix != "" {
			text = prefix + "\n" + text
		}
		return Reply{Text: text, Buttons: [][]string{{session.BackToken}}}, nil
	}

	text := prompt.Question
	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	return Reply{Text: text, Buttons: buttonRows(prompt.Answers)}, nil
}

func addItemReply() Reply {
	return Reply{
		Text:    msgSelectValue,
		Buttons: [][]string{{cmdNavigation, cmdArticle}, {cmdQuiz, session.BackToken}},
	}
}

func (e *Engine) handleAddItem(s *session.Session, text string) Reply {
	if !s.Admin {
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgSelectValue)
	}
	switch text {
	case cmdNavigation:
		s.Stage = session.StageAddNavigation
		return Reply{Text: "Enter the navigation name", ClearKeyboard: true}
	case cmdArticle:
		s.Stage = session.StageAddArticleName
		return Reply{Text: "Enter the new article name", ClearKeyboard: true}
	case cmdQuiz:
		s.Stage = session.StageAddQuizName
		return Reply{Text: "Enter the quiz name", ClearKeyboard: true}
	case session.BackToken:
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgSelectValue)
	default:
		return addItemReply()
	}
}

func (e *Engine) handleAddNavigation(ctx context.Context, s *session.Session, text string) Reply {
	s.Stage = session.StageMenu
	if err := e.content.AddNavigation(ctx, s.History, text); err != nil {
		e.log.Warn("add navigation failed", "name", text, "err", err)
		return e.menuMove(s, "", msgCouldNotApply)
	}
	return e.menuMove(s, "", "New navigation added")
}

func (e *Engine) handleAddArticleName(ctx context.Context, s *session.Session, text string) Reply {
	if err := e.content.AddArticle(ctx, s.History, text); err != nil {
		e.log.Warn("add article failed", "name", text, "err", err)
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgCouldNotApply)
	}
	s.LastArticle = text
	s.Stage = session.StageAddBlockType
	return blockTypeReply()
}

func blockTypeReply() Reply {
	return Reply{
		Text:    msgSelectValue,
		Buttons: [][]string{{cmdText, cmdImage}, {cmdVideo, session.BackToken}},
	}
}

func (e *Engine) handleAddBlockType(s *session.Session, text string) Reply {
	switch text {
	case cmdText:
		s.Stage = session.StageAddTextBlock
		return Reply{Text: "Enter the article text", ClearKeyboard: true}
	case cmdImage:
		s.Stage = session.StageAddImageBlock
		return Reply{Text: "Upload an image with a caption", ClearKeyboard: true}
	case cmdVideo:
		s.Stage = session.StageAddVideoBlock
		return Reply{Text: "Upload a video with a caption", ClearKeyboard: true}
	case session.BackToken:
		s.Stage = session.StageMenu
		s.LastArticle = ""
		return e.menuMove(s, "", msgSelectValue)
	default:
		return blockTypeReply()
	}
}

func (e *Engine) handleAddTextBlock(ctx context.Context, s *session.Session, text string) Reply {
	block := content.Block{Kind: content.BlockText, Payload: text}
	if err := e.content.AppendArticleBlock(ctx, s.History, s.LastArticle, block); err != nil {
		e.log.Warn("append text block failed", "article", s.LastArticle, "err", err)
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgCouldNotApply)
	}
	s.Stage = session.StageAddBlockType
	reply := blockTypeReply()
	reply.Text = "Text added. " + msgSelectValue
	return reply
}

func (e *Engine) handleAddQuizName(s *session.Session, text string) Reply {
	s.PendingQuiz = text
	s.Stage = session.StageAddQuizPayload
	return Reply{Text: "Upload a file with quiz questions", ClearKeyboard: true}
}

func (e *Engine) removeItemReply(s *session.Session) Reply {
	tree := e.content.Tree()
	entries := session.Listing(tree, s)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	rows := buttonRows(names)
	rows = append(rows, []string{session.BackToken})
	return Reply{Text: "Select the item to delete", Buttons: rows}
}

func (e *Engine) handleRemoveItem(ctx context.Context, s *session.Session, text string) Reply {
	if !s.Admin || text == session.BackToken {
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgSelectValue)
	}
	s.Stage = session.StageMenu
	if err := e.content.RemoveItem(ctx, s.History, text); err != nil {
		e.log.Warn("remove item failed", "name", text, "err", err)
		return e.menuMove(s, "", msgCouldNotApply)
	}
	return e.menuMove(s, "", "The item is deleted")
}

// handleUpload routes a binary payload by stage. Uploads arriving outside
// an upload stage fall back to the menu.
func (e *Engine) handleUpload(ctx context.Context, s *session.Session, up Upload) (Reply, error) {
	switch s.Stage {
	case session.StageAddImageBlock:
		return e.saveMediaBlock(ctx, s, up, content.BlockImage), nil
	case session.StageAddVideoBlock:
		return e.saveMediaBlock(ctx, s, up, content.BlockVideo), nil
	case session.StageAddQuizPayload:
		return e.saveQuizPayload(ctx, s, up), nil
	default:
		return e.menuMove(s, "", msgSelectValue), nil
	}
}

func (e *Engine) saveMediaBlock(ctx context.Context, s *session.Session, up Upload, kind content.BlockKind) Reply {
	var (
		ref string
		err error
	)
	switch kind {
	case content.BlockImage:
		ref, err = e.media.SaveImage(up.Name, up.Data)
	default:
		ref, err = e.media.SaveVideo(up.Name, up.Data)
	}
	if err != nil {
		e.log.Warn("save upload failed", "name", up.Name, "err", err)
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgCouldNotApply)
	}

	block := content.Block{Kind: kind, Payload: ref, Caption: up.Caption}
	if err := e.content.AppendArticleBlock(ctx, s.History, s.LastArticle, block); err != nil {
		e.log.Warn("append media block failed", "article", s.LastArticle, "err", err)
		s.Stage = session.StageMenu
		return e.menuMove(s, "", msgCouldNotApply)
	}
	s.Stage = session.StageAddBlockType
	reply := blockTypeReply()
	reply.Text = "Media added. " + msgSelectValue
	return reply
}

func (e *Engine) saveQuizPayload(ctx context.Context, s *session.Session, up Upload) Reply {
	name := s.PendingQuiz
	s.PendingQuiz = ""
	s.Stage = session.StageMenu

	payload, err := io.ReadAll(up.Data)
	if err != nil {
		e.log.Warn("read quiz payload failed", "quiz", name, "err", err)
		return e.menuMove(s, "", msgCouldNotApply)
	}
	if err := e.content.AddQuiz(ctx, s.History, name, payload); err != nil {
		e.log.Warn("add quiz failed", "quiz", name, "err", err)
		return e.menuMove(s, "", msgCouldNotApply)
	}
	return e.menuMove(s, "", "Quiz added successfully")
}

// menuMove applies a navigation step and renders the resulting scope as a
// keyboard of two-wide rows, with the back token and admin commands
// appended when applicable.
func (e *Engine) menuMove(s *session.Session, target, text string) Reply {
	tree := e.content.Tree()
	var entries []session.Entry
	if target == "" {
		session.Heal(tree, s)
		entries = session.Listing(tree, s)
	} else {
		entries = session.MoveTo(tree, s, target)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	rows := buttonRows(names)
	if len(s.History) > 0 {
		rows = append(rows, []string{session.BackToken})
	}
	if s.Admin {
		rows = append(rows, []string{cmdAdd, cmdDelete})
	}
	return Reply{Text: text, Buttons: rows}
}
