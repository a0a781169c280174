// Package content implements the knowledge-base tree: the tagged node model,
// the JSON document codec, routing lookups, and the file-backed document store
// that all mutations flow through.
package content

// Kind discriminates the three node variants of the content tree.
type Kind int

const (
	KindNavigation Kind = iota
	KindArticle
	KindQuiz
)

// String returns the wire-format tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindNavigation:
		return "navigation"
	case KindArticle:
		return "article"
	case KindQuiz:
		return "quiz"
	}
	return "unknown"
}

// BlockKind discriminates article content blocks.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
	BlockVideo
)

// String returns the wire-format tag for the block kind.
func (b BlockKind) String() string {
	switch b {
	case BlockText:
		return "text"
	case BlockImage:
		return "image"
	case BlockVideo:
		return "video"
	}
	return "unknown"
}

// Block is one unit of article content. For BlockText the payload is the body
// text and the caption is unused; for BlockImage and BlockVideo the payload is
// a storage reference owned by the media collaborator.
type Block struct {
	Kind    BlockKind
	Payload string
	Caption string
}

// Answer is one selectable option of a quiz question.
type Answer struct {
	Label   string
	Correct bool
}

// Question is a single multiple-choice quiz question.
type Question struct {
	Prompt  string
	Hint    string
	Points  float64
	Answers []Answer
}

// Clone returns a deep copy of the question. Quiz attempts shuffle answer
// order in place, so they must never hold the tree's own slices.
func (q Question) Clone() Question {
	out := q
	out.Answers = make([]Answer, len(q.Answers))
	copy(out.Answers, q.Answers)
	return out
}

// Quiz holds the scored question list of a quiz node.
type Quiz struct {
	TotalScore float64
	Questions  []Question
}

// Node is one entry in the content tree. Exactly one of Children, Blocks, or
// Quiz is meaningful, selected by Kind.
type Node struct {
	Kind     Kind
	Name     string
	Children []*Node // KindNavigation
	Blocks   []Block // KindArticle
	Quiz     *Quiz   // KindQuiz
}

// Child returns the direct child with the given name, or nil.
// Children are kept in insertion order, which defines display order.
func (n *Node) Child(name string) *Node {
	return findChild(n.Children, name)
}

func findChild(nodes []*Node, name string) *Node {
	for _, c := range nodes {
		if c.Name == name {
			return c
		}
	}
	return nil
}
