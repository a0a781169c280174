package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// MediaReleaser deletes a stored media blob by its path reference.
// Removal of an absent blob is not an error.
type MediaReleaser interface {
	Remove(path string) error
}

// ScorePurger drops all persisted scores recorded against a quiz name.
type ScorePurger interface {
	DeleteByQuiz(ctx context.Context, quizName string) error
}

// Store owns the backing content document and the current in-memory tree.
//
// Every mutation runs a full read-validate-write cycle against the file under
// a single mutex, so concurrent admins cannot lose each other's updates, and
// persists atomically (write to temp, then rename). After every successful
// write the in-memory tree and its routing lookup are rebuilt from the nodes
// just written.
type Store struct {
	path   string
	log    *log.Logger
	media  MediaReleaser
	scores ScorePurger

	// mu serializes the read-validate-write cycle. It is never held across
	// media or ledger I/O.
	mu sync.Mutex

	treeMu sync.RWMutex
	tree   *Tree
}

// Option configures a Store created with Open.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithMedia sets the media collaborator used to release blob references when
// articles are removed.
func WithMedia(m MediaReleaser) Option {
	return func(s *Store) { s.media = m }
}

// WithScores sets the ledger collaborator used to purge scores when quizzes
// are removed.
func WithScores(p ScorePurger) Option {
	return func(s *Store) { s.scores = p }
}

// Open loads the document at path and builds the initial tree. A missing file
// is created as an empty document.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, log: log.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		empty, err := Encode(nil)
		if err != nil {
			return nil, err
		}
		if err := writeFileAtomic(path, empty); err != nil {
			return nil, fmt.Errorf("create document: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing document path.
func (s *Store) Path() string {
	return s.path
}

// Tree returns the current tree snapshot. The returned tree is never mutated;
// it is replaced wholesale after each document write.
func (s *Store) Tree() *Tree {
	s.treeMu.RLock()
	defer s.treeMu.RUnlock()
	return s.tree
}

func (s *Store) setTree(t *Tree) {
	s.treeMu.Lock()
	s.tree = t
	s.treeMu.Unlock()
}

// Reload re-reads the document from disk and rebuilds the tree. Used at open
// and when the file changes out-of-band.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes, err := s.readNodes()
	if err != nil {
		return err
	}
	s.setTree(NewTree(nodes))
	return nil
}

// AddNavigation inserts an empty navigation node under the scope denoted by
// the given path. The name must not collide with an existing sibling.
func (s *Store) AddNavigation(ctx context.Context, scope []string, name string) error {
	return s.addNode(ctx, scope, &Node{Kind: KindNavigation, Name: name})
}

// AddArticle inserts an empty article under the scope denoted by the given
// path.
func (s *Store) AddArticle(ctx context.Context, scope []string, name string) error {
	return s.addNode(ctx, scope, &Node{Kind: KindArticle, Name: name})
}

// AddQuiz validates a quiz ingestion payload and inserts it as a quiz node
// under the scope denoted by the given path. A malformed payload aborts the
// mutation with ErrValidation and no write.
func (s *Store) AddQuiz(ctx context.Context, scope []string, name string, payload []byte) error {
	quiz, err := ParseQuizPayload(payload)
	if err != nil {
		return err
	}
	return s.addNode(ctx, scope, &Node{Kind: KindQuiz, Name: name, Quiz: quiz})
}

func (s *Store) addNode(ctx context.Context, scope []string, node *Node) error {
	err := s.mutate(func(root *[]*Node) error {
		ref, err := scopeRef(root, scope)
		if err != nil {
			return err
		}
		if findChild(*ref, node.Name) != nil {
			return fmt.Errorf("add %q: %w", node.Name, ErrConflict)
		}
		*ref = append(*ref, node)
		return nil
	})
	if err == nil {
		s.log.Info("content node added", "kind", node.Kind.String(), "name", node.Name)
	}
	return err
}

// AppendArticleBlock appends one content block to the named article inside
// the scope denoted by the given path.
func (s *Store) AppendArticleBlock(ctx context.Context, scope []string, article string, block Block) error {
	return s.mutate(func(root *[]*Node) error {
		ref, err := scopeRef(root, scope)
		if err != nil {
			return err
		}
		node := findChild(*ref, article)
		if node == nil || node.Kind != KindArticle {
			return fmt.Errorf("article %q: %w", article, ErrNotFound)
		}
		node.Blocks = append(node.Blocks, block)
		return nil
	})
}

// RemoveItem deletes the named child of the scope denoted by the given path.
// Removing an absent name returns ErrNotFound and leaves the document
// unchanged. Media references and ledger scores belonging to the removed
// subtree are released after the write, outside the document critical
// section; failures there are logged, not propagated, since the document
// mutation has already committed.
func (s *Store) RemoveItem(ctx context.Context, scope []string, name string) error {
	var mediaRefs, quizNames []string

	err := s.mutate(func(root *[]*Node) error {
		ref, err := scopeRef(root, scope)
		if err != nil {
			return err
		}
		idx := -1
		for i, c := range *ref {
			if c.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("remove %q: %w", name, ErrNotFound)
		}
		mediaRefs, quizNames = collectReferences((*ref)[idx])
		*ref = append((*ref)[:idx], (*ref)[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	if s.media != nil {
		for _, p := range mediaRefs {
			if err := s.media.Remove(p); err != nil {
				s.log.Warn("release media reference", "path", p, "err", err)
			}
		}
	}
	if s.scores != nil {
		for _, q := range quizNames {
			if err := s.scores.DeleteByQuiz(ctx, q); err != nil {
				s.log.Warn("purge quiz scores", "quiz", q, "err", err)
			}
		}
	}

	s.log.Info("content node removed", "name", name)
	return nil
}

// collectReferences walks a removed subtree and gathers media payload
// references and quiz names so their external state can be released.
func collectReferences(n *Node) (mediaRefs, quizNames []string) {
	switch n.Kind {
	case KindArticle:
		for _, b := range n.Blocks {
			if b.Kind == BlockImage || b.Kind == BlockVideo {
				mediaRefs = append(mediaRefs, b.Payload)
			}
		}
	case KindQuiz:
		quizNames = append(quizNames, n.Name)
	case KindNavigation:
		for _, c := range n.Children {
			m, q := collectReferences(c)
			mediaRefs = append(mediaRefs, m...)
			quizNames = append(quizNames, q...)
		}
	}
	return mediaRefs, quizNames
}

// mutate runs one exclusive read-validate-write cycle. The closure receives
// the freshly re-read node list, never the cached in-memory tree, so a stale
// view held by the caller cannot be written back.
func (s *Store) mutate(apply func(root *[]*Node) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, err := s.readNodes()
	if err != nil {
		return err
	}
	if err := apply(&nodes); err != nil {
		return err
	}
	out, err := Encode(nodes)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, out); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	s.setTree(NewTree(nodes))
	return nil
}

func (s *Store) readNodes() ([]*Node, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Decode(data)
}

// scopeRef resolves a navigation path inside a freshly read node list and
// returns a reference to the child slice of the final scope, so mutations
// apply to the document being written.
func scopeRef(root *[]*Node, path []string) (*[]*Node, error) {
	ref := root
	for _, name := range path {
		child := findChild(*ref, name)
		if child == nil || child.Kind != KindNavigation {
			return nil, fmt.Errorf("scope %q: %w", name, ErrNotFound)
		}
		ref = &child.Children
	}
	return ref, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so a crash mid-write never leaves a truncated
// document behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
