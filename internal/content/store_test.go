package content

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMedia struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeMedia) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

type fakePurger struct {
	mu     sync.Mutex
	purged []string
}

func (f *fakePurger) DeleteByQuiz(_ context.Context, quizName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged = append(f.purged, quizName)
	return nil
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.json")
	s, err := Open(path, opts...)
	require.NoError(t, err)
	return s
}

func TestOpenCreatesEmptyDocument(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.Tree().Roots())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content"`)
}

func TestAddNavigationConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddNavigation(ctx, nil, "X"))
	err := s.AddNavigation(ctx, nil, "X")
	assert.ErrorIs(t, err, ErrConflict)

	roots := s.Tree().Roots()
	count := 0
	for _, n := range roots {
		if n.Name == "X" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAddInMissingScope(t *testing.T) {
	s := newTestStore(t)
	err := s.AddArticle(context.Background(), []string{"NoSuchFolder"}, "A")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendArticleBlock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddNavigation(ctx, nil, "Docs"))
	require.NoError(t, s.AddArticle(ctx, []string{"Docs"}, "Intro"))
	require.NoError(t, s.AppendArticleBlock(ctx, []string{"Docs"}, "Intro", Block{Kind: BlockText, Payload: "hi"}))
	require.NoError(t, s.AppendArticleBlock(ctx, []string{"Docs"}, "Intro", Block{Kind: BlockImage, Payload: "images/x.jpg", Caption: "x"}))

	blocks, err := s.Tree().Article([]string{"Docs"}, "Intro")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "hi", blocks[0].Payload)

	err = s.AppendArticleBlock(ctx, []string{"Docs"}, "Nope", Block{Kind: BlockText})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddQuizValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.AddQuiz(ctx, nil, "Broken", []byte(`{"questions": []}`))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, s.Tree().Roots(), "failed validation must not write")

	require.NoError(t, s.AddQuiz(ctx, nil, "Checkpoint", []byte(validQuizPayload)))
	kind, ok := s.Tree().Lookup("Checkpoint")
	require.True(t, ok)
	assert.Equal(t, KindQuiz, kind)
}

func TestRemoveItemIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddNavigation(ctx, nil, "Gone"))
	require.NoError(t, s.RemoveItem(ctx, nil, "Gone"))

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	err = s.RemoveItem(ctx, nil, "Gone")
	assert.ErrorIs(t, err, ErrNotFound)

	after, readErr := os.ReadFile(s.Path())
	require.NoError(t, readErr)
	assert.Equal(t, string(before), string(after), "failed remove must leave document unchanged")
}

func TestRemoveArticleReleasesMedia(t *testing.T) {
	media := &fakeMedia{}
	s := newTestStore(t, WithMedia(media))
	ctx := context.Background()

	require.NoError(t, s.AddArticle(ctx, nil, "Gallery"))
	require.NoError(t, s.AppendArticleBlock(ctx, nil, "Gallery", Block{Kind: BlockText, Payload: "intro"}))
	require.NoError(t, s.AppendArticleBlock(ctx, nil, "Gallery", Block{Kind: BlockImage, Payload: "images/1.jpg"}))
	require.NoError(t, s.AppendArticleBlock(ctx, nil, "Gallery", Block{Kind: BlockImage, Payload: "images/2.jpg"}))
	require.NoError(t, s.AppendArticleBlock(ctx, nil, "Gallery", Block{Kind: BlockVideo, Payload: "videos/3.mp4"}))

	require.NoError(t, s.RemoveItem(ctx, nil, "Gallery"))
	assert.Equal(t, []string{"images/1.jpg", "images/2.jpg", "videos/3.mp4"}, media.removed)
}

func TestRemoveQuizPurgesScores(t *testing.T) {
	purger := &fakePurger{}
	s := newTestStore(t, WithScores(purger))
	ctx := context.Background()

	require.NoError(t, s.AddNavigation(ctx, nil, "Folder"))
	require.NoError(t, s.AddQuiz(ctx, []string{"Folder"}, "Checkpoint", []byte(validQuizPayload)))

	// Removing the whole folder purges quizzes nested inside it.
	require.NoError(t, s.RemoveItem(ctx, nil, "Folder"))
	assert.Equal(t, []string{"Checkpoint"}, purger.purged)
}

func TestConcurrentAddNoLostUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	names := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta"}
	errs := make([]error, len(names))
	for i, name := range names {
		i, name := i, name
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.AddArticle(ctx, nil, name)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "add %q", names[i])
	}

	tree := s.Tree()
	for _, name := range names {
		kind, ok := tree.Lookup(name)
		assert.True(t, ok, "article %q survived", name)
		assert.Equal(t, KindArticle, kind)
	}

	// The document on disk agrees with the in-memory view.
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	reloaded, err := Load(data)
	require.NoError(t, err)
	assert.Len(t, reloaded.Roots(), len(names))
}

func TestMutationsUseFreshDocument(t *testing.T) {
	// Two stores over the same file: a write through one is visible to a
	// mutation through the other, because mutations re-read the file.
	path := filepath.Join(t.TempDir(), "content.json")
	a, err := Open(path)
	require.NoError(t, err)
	b, err := Open(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.AddNavigation(ctx, nil, "Shared"))
	require.NoError(t, b.AddArticle(ctx, []string{"Shared"}, "Doc"))

	require.NoError(t, a.Reload())
	_, err = a.Tree().Article([]string{"Shared"}, "Doc")
	assert.NoError(t, err)
}
