package engine

import (
	"io"

	"github.com/abhisek/lorebot/internal/content"
)

// Reply is the engine's answer to one inbound event. The transport decides
// how to render it; the engine only supplies plain data.
type Reply struct {
	// Text is the message body.
	Text string

	// Buttons are suggested quick-reply rows, top to bottom.
	Buttons [][]string

	// Blocks carries article content to render, if the event resolved to
	// an article.
	Blocks []content.Block

	// ClearKeyboard asks the transport to drop any previous quick replies,
	// used when the next input is free-form text or an upload.
	ClearKeyboard bool
}

// UploadKind discriminates inbound binary payloads.
type UploadKind int

const (
	UploadImage UploadKind = iota
	UploadVideo
	UploadDocument
)

// Upload is an inbound binary payload: an image or video for an article
// block, or a document carrying a quiz payload.
type Upload struct {
	Kind    UploadKind
	Name    string
	Caption string
	Data    io.Reader
}

// buttonRows lays names out two per row, the way scope listings are
// presented.
func buttonRows(names []string) [][]string {
	var rows [][]string
	for i := 0; i < len(names); i += 2 {
		end := i + 2
		if end > len(names) {
			end = len(names)
		}
		rows = append(rows, names[i:end])
	}
	return rows
}
