package session

import (
	"github.com/abhisek/lorebot/internal/content"
)

// BackToken is the reserved navigation input that pops one level of history.
// Content cannot use it as a node name without shadowing it.
const BackToken = "Back"

// Entry is one line of a scope listing: a child's name and kind, in the
// tree's insertion order.
type Entry struct {
	Name string
	Kind content.Kind
}

// Heal truncates the session's history at the first name that no longer
// resolves against the live tree. A concurrent delete under the cursor
// therefore moves the user up to the nearest surviving ancestor instead of
// faulting.
func Heal(tree *content.Tree, s *Session) {
	scope := tree.Roots()
	for i, name := range s.History {
		child := navChild(scope, name)
		if child == nil {
			s.History = s.History[:i]
			return
		}
		scope = child.Children
	}
}

// MoveTo applies one navigation input to the session's cursor and returns
// the listing of the resulting scope.
//
// The reserved back token pops the last history entry and short-circuits.
// Otherwise, the history is re-validated against the live tree, and if the
// target names a navigation child of the validated scope the cursor
// descends into it. Any other target leaves the cursor in place; the
// listing of the current scope is returned either way.
func MoveTo(tree *content.Tree, s *Session, target string) []Entry {
	if target == BackToken {
		if n := len(s.History); n > 0 {
			s.History = s.History[:n-1]
		}
		Heal(tree, s)
		return Listing(tree, s)
	}

	Heal(tree, s)
	scope, err := tree.Resolve(s.History)
	if err != nil {
		// Heal guarantees the history resolves; an empty tree still
		// resolves to an empty root listing.
		scope = tree.Roots()
		s.History = nil
	}

	if child := navChild(scope, target); child != nil {
		s.History = append(s.History, target)
		scope = child.Children
	}
	return entries(scope)
}

// Listing returns the ordered listing of the session's current scope.
func Listing(tree *content.Tree, s *Session) []Entry {
	Heal(tree, s)
	scope, err := tree.Resolve(s.History)
	if err != nil {
		return nil
	}
	return entries(scope)
}

func navChild(scope []*content.Node, name string) *content.Node {
	for _, n := range scope {
		if n.Name == name && n.Kind == content.KindNavigation {
			return n
		}
	}
	return nil
}

func entries(scope []*content.Node) []Entry {
	out := make([]Entry, 0, len(scope))
	for _, n := range scope {
		out = append(out, Entry{Name: n.Name, Kind: n.Kind})
	}
	return out
}
