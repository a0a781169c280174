package content

import (
	"fmt"
	"sort"
)

// Tree is an immutable snapshot of the knowledge base together with its
// derived routing lookup. A new Tree is built from scratch on every document
// load; nothing is patched incrementally, which keeps the lookup and the node
// tree consistent by construction.
type Tree struct {
	nodes []*Node
	kinds map[string]Kind
}

// RoutingSets groups the names of the tree by node kind. The transport layer
// uses these to classify raw user text before asking the core to act on it.
type RoutingSets struct {
	Navigation []string
	Articles   []string
	Quizzes    []string
}

// Load parses a serialized document and builds the routing lookup in a single
// depth-first pass.
func Load(data []byte) (*Tree, error) {
	nodes, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return NewTree(nodes), nil
}

// NewTree builds a Tree from an already-decoded node list.
func NewTree(nodes []*Node) *Tree {
	t := &Tree{nodes: nodes, kinds: make(map[string]Kind)}
	t.index(nodes)
	return t
}

func (t *Tree) index(nodes []*Node) {
	for _, n := range nodes {
		t.kinds[n.Name] = n.Kind
		if n.Kind == KindNavigation {
			t.index(n.Children)
		}
	}
}

// Roots returns the top-level nodes in display order.
func (t *Tree) Roots() []*Node {
	return t.nodes
}

// Lookup classifies a name against the routing lookup. The boolean is false
// for names that appear nowhere in the tree.
func (t *Tree) Lookup(name string) (Kind, bool) {
	k, ok := t.kinds[name]
	return k, ok
}

// Routing returns the three routing name sets, each sorted for stable output.
func (t *Tree) Routing() RoutingSets {
	var rs RoutingSets
	for name, kind := range t.kinds {
		switch kind {
		case KindNavigation:
			rs.Navigation = append(rs.Navigation, name)
		case KindArticle:
			rs.Articles = append(rs.Articles, name)
		case KindQuiz:
			rs.Quizzes = append(rs.Quizzes, name)
		}
	}
	sort.Strings(rs.Navigation)
	sort.Strings(rs.Articles)
	sort.Strings(rs.Quizzes)
	return rs
}

// Resolve walks a path of navigation names from the root and returns the
// children of the final scope. An empty path resolves to the root listing.
// It fails with ErrNotFound at the first name that is not a navigation child
// of the current scope.
func (t *Tree) Resolve(path []string) ([]*Node, error) {
	scope := t.nodes
	for _, name := range path {
		child := findChild(scope, name)
		if child == nil || child.Kind != KindNavigation {
			return nil, fmt.Errorf("resolve %q: %w", name, ErrNotFound)
		}
		scope = child.Children
	}
	return scope, nil
}

// Article returns the blocks of the article with the given name inside the
// scope denoted by path.
func (t *Tree) Article(path []string, name string) ([]Block, error) {
	scope, err := t.Resolve(path)
	if err != nil {
		return nil, err
	}
	node := findChild(scope, name)
	if node == nil || node.Kind != KindArticle {
		return nil, fmt.Errorf("article %q: %w", name, ErrNotFound)
	}
	return node.Blocks, nil
}

// QuizByName returns the quiz with the given name inside the scope denoted by
// path.
func (t *Tree) QuizByName(path []string, name string) (*Quiz, error) {
	scope, err := t.Resolve(path)
	if err != nil {
		return nil, err
	}
	node := findChild(scope, name)
	if node == nil || node.Kind != KindQuiz {
		return nil, fmt.Errorf("quiz %q: %w", name, ErrNotFound)
	}
	return node.Quiz, nil
}
