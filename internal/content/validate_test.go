package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validQuizPayload = `{
	"total_score": 3,
	"questions": [
		{"name": "Q1", "hint": "h1", "points": 1, "answers": [
			{"text": "A", "is_correct": true},
			{"text": "B", "is_correct": false}
		]},
		{"name": "Q2", "hint": "h2", "points": 2, "answers": [
			{"text": "C", "is_correct": "true"},
			{"text": "D", "is_correct": "false"}
		]}
	]
}`

func TestParseQuizPayload(t *testing.T) {
	quiz, err := ParseQuizPayload([]byte(validQuizPayload))
	require.NoError(t, err)

	assert.Equal(t, 3.0, quiz.TotalScore)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "Q1", quiz.Questions[0].Prompt)
	assert.True(t, quiz.Questions[1].Answers[0].Correct)
}

func TestParseQuizPayloadRejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"total_score":`},
		{"missing total_score", `{"questions": []}`},
		{"missing questions", `{"total_score": 1}`},
		{
			"question missing hint",
			`{"total_score": 1, "questions": [
				{"name": "Q", "points": 1, "answers": [{"text": "A", "is_correct": true}]}
			]}`,
		},
		{
			"answer missing is_correct",
			`{"total_score": 1, "questions": [
				{"name": "Q", "hint": "h", "points": 1, "answers": [{"text": "A"}]}
			]}`,
		},
		{
			"no correct answer",
			`{"total_score": 1, "questions": [
				{"name": "Q", "hint": "h", "points": 1, "answers": [
					{"text": "A", "is_correct": false},
					{"text": "B", "is_correct": "false"}
				]}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuizPayload([]byte(tt.payload))
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
