package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeRouting(t *testing.T) {
	tree := NewTree(sampleNodes())

	rs := tree.Routing()
	assert.Equal(t, []string{"Basics"}, rs.Navigation)
	assert.Equal(t, []string{"About", "Welcome"}, rs.Articles)
	assert.Equal(t, []string{"Checkpoint"}, rs.Quizzes)

	kind, ok := tree.Lookup("Checkpoint")
	require.True(t, ok)
	assert.Equal(t, KindQuiz, kind)

	_, ok = tree.Lookup("Nope")
	assert.False(t, ok)
}

func TestTreeResolve(t *testing.T) {
	tree := NewTree(sampleNodes())

	roots, err := tree.Resolve(nil)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	children, err := tree.Resolve([]string{"Basics"})
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "Welcome", children[0].Name)
	assert.Equal(t, "Checkpoint", children[1].Name)

	_, err = tree.Resolve([]string{"Missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	// Articles are not navigable scopes.
	_, err = tree.Resolve([]string{"About"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTreeArticleAndQuiz(t *testing.T) {
	tree := NewTree(sampleNodes())

	blocks, err := tree.Article([]string{"Basics"}, "Welcome")
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, BlockText, blocks[0].Kind)

	quiz, err := tree.QuizByName([]string{"Basics"}, "Checkpoint")
	require.NoError(t, err)
	assert.Equal(t, 3.0, quiz.TotalScore)

	_, err = tree.QuizByName([]string{"Basics"}, "Welcome")
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = tree.Article(nil, "Basics")
	assert.ErrorIs(t, err, ErrNotFound)
}
