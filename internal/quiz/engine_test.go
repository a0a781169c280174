package quiz

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lorebot/internal/content"
)

type fakeRecorder struct {
	err  error
	puts []string // "user|quiz|score"
}

func (f *fakeRecorder) Put(_ context.Context, userID int64, quizName, score string) error {
	if f.err != nil {
		return f.err
	}
	f.puts = append(f.puts, quizName+"|"+score)
	return nil
}

func scoringTree() *content.Tree {
	return content.NewTree([]*content.Node{
		{
			Kind: content.KindQuiz,
			Name: "Checkpoint",
			Quiz: &content.Quiz{
				TotalScore: 3,
				Questions: []content.Question{
					{
						Prompt: "first",
						Hint:   "hint one",
						Points: 1,
						Answers: []content.Answer{
							{Label: "A", Correct: true},
							{Label: "B"},
						},
					},
					{
						Prompt: "second",
						Hint:   "hint two",
						Points: 2,
						Answers: []content.Answer{
							{Label: "C", Correct: true},
							{Label: "D"},
						},
					},
				},
			},
		},
	})
}

// noShuffle keeps authored answer order so tests can address answers by label.
func noShuffle([]content.Answer) {}

func runQuiz(t *testing.T, answers []string) (*fakeRecorder, *Result) {
	t.Helper()
	rec := &fakeRecorder{}
	e := NewEngine(rec, nil, WithShuffle(noShuffle))
	ctx := context.Background()

	a, err := e.Start(scoringTree(), nil, "Checkpoint")
	require.NoError(t, err)

	prompt, res, err := e.Advance(ctx, a, 7)
	require.NoError(t, err)
	require.Nil(t, res)

	for _, answer := range answers {
		require.NotNil(t, prompt)
		e.Submit(a, answer)
		prompt, res, err = e.Advance(ctx, a, 7)
		require.NoError(t, err)
	}
	require.Nil(t, prompt, "all questions consumed")
	require.NotNil(t, res)
	return rec, res
}

func TestScoringPartial(t *testing.T) {
	rec, res := runQuiz(t, []string{"A", "D"})
	assert.Equal(t, "1/3", res.String())
	assert.Equal(t, []string{"Checkpoint|1/3"}, rec.puts)
}

func TestScoringPerfect(t *testing.T) {
	rec, res := runQuiz(t, []string{"A", "C"})
	assert.Equal(t, "3/3", res.String())
	assert.Equal(t, []string{"Checkpoint|3/3"}, rec.puts)
}

func TestSubmitFeedback(t *testing.T) {
	e := NewEngine(&fakeRecorder{}, nil, WithShuffle(noShuffle))
	a, err := e.Start(scoringTree(), nil, "Checkpoint")
	require.NoError(t, err)

	_, _, err = e.Advance(context.Background(), a, 7)
	require.NoError(t, err)

	fb := e.Submit(a, "B")
	assert.False(t, fb.Correct)
	assert.Equal(t, "hint one", fb.Hint)

	// An unrecognized label is just incorrect.
	fb = e.Submit(a, "Z")
	assert.False(t, fb.Correct)
	assert.Equal(t, "hint one", fb.Hint)
}

func TestStartNotFound(t *testing.T) {
	e := NewEngine(&fakeRecorder{}, nil)
	_, err := e.Start(scoringTree(), nil, "NoSuchQuiz")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestShuffleDoesNotTouchTree(t *testing.T) {
	tree := scoringTree()
	reverse := func(answers []content.Answer) {
		sort.Slice(answers, func(i, j int) bool { return answers[i].Label > answers[j].Label })
	}
	e := NewEngine(&fakeRecorder{}, nil, WithShuffle(reverse))

	a, err := e.Start(tree, nil, "Checkpoint")
	require.NoError(t, err)
	prompt, _, err := e.Advance(context.Background(), a, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, prompt.Answers)

	quiz, err := tree.QuizByName(nil, "Checkpoint")
	require.NoError(t, err)
	assert.Equal(t, "A", quiz.Questions[0].Answers[0].Label, "tree order untouched")
}

func TestPersistFailureSurfaces(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	e := NewEngine(rec, nil, WithShuffle(noShuffle))
	ctx := context.Background()

	a, err := e.Start(scoringTree(), nil, "Checkpoint")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		prompt, _, err := e.Advance(ctx, a, 7)
		require.NoError(t, err)
		require.NotNil(t, prompt)
		e.Submit(a, prompt.Answers[0])
	}

	// Queue exhausted: the finishing Advance hits the recorder.
	_, _, err = e.Advance(ctx, a, 7)
	require.Error(t, err)
}
