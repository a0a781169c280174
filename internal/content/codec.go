package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire format: the document root is {"content": [node...]} where each node is
// {"type": ..., "name": ..., "content": ...}. A navigation node's content is a
// nested node list, an article's is a block list, and a quiz's is an object
// with total_score and questions.

type docRoot struct {
	Content []docNode `json:"content"`
}

type docNode struct {
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Content json.RawMessage `json:"content"`
}

type docBlock struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Caption string `json:"caption,omitempty"`
}

type docQuiz struct {
	TotalScore float64       `json:"total_score"`
	Questions  []docQuestion `json:"questions"`
}

type docQuestion struct {
	Name    string      `json:"name"`
	Hint    string      `json:"hint"`
	Points  float64     `json:"points"`
	Answers []docAnswer `json:"answers"`
}

type docAnswer struct {
	Text      string   `json:"text"`
	IsCorrect flexBool `json:"is_correct"`
}

// flexBool accepts either a JSON boolean or the strings "true"/"false" on
// input (legacy documents carry both) and always serializes as a boolean.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "true":
			*f = true
			return nil
		case "false":
			*f = false
			return nil
		}
	}
	return fmt.Errorf("is_correct: want bool or \"true\"/\"false\", got %s", data)
}

func (f flexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Decode parses a serialized document into the node model. Nodes carrying an
// unknown type tag are silently skipped so newer documents stay loadable.
func Decode(data []byte) ([]*Node, error) {
	var root docRoot
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return decodeNodes(root.Content)
}

func decodeNodes(in []docNode) ([]*Node, error) {
	var out []*Node
	for _, dn := range in {
		node, ok, err := decodeNode(dn)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, node)
		}
	}
	return out, nil
}

func decodeNode(dn docNode) (*Node, bool, error) {
	switch dn.Type {
	case "navigation":
		var children []docNode
		if err := json.Unmarshal(dn.Content, &children); err != nil {
			return nil, false, fmt.Errorf("navigation %q: %w", dn.Name, err)
		}
		decoded, err := decodeNodes(children)
		if err != nil {
			return nil, false, err
		}
		return &Node{Kind: KindNavigation, Name: dn.Name, Children: decoded}, true, nil

	case "article":
		var blocks []docBlock
		if err := json.Unmarshal(dn.Content, &blocks); err != nil {
			return nil, false, fmt.Errorf("article %q: %w", dn.Name, err)
		}
		node := &Node{Kind: KindArticle, Name: dn.Name}
		for _, b := range blocks {
			kind, ok := blockKindFromTag(b.Type)
			if !ok {
				continue
			}
			node.Blocks = append(node.Blocks, Block{Kind: kind, Payload: b.Content, Caption: b.Caption})
		}
		return node, true, nil

	case "quiz":
		var dq docQuiz
		if err := json.Unmarshal(dn.Content, &dq); err != nil {
			return nil, false, fmt.Errorf("quiz %q: %w", dn.Name, err)
		}
		return &Node{Kind: KindQuiz, Name: dn.Name, Quiz: quizFromDoc(dq)}, true, nil
	}

	// Unknown type tag: skip for forward compatibility.
	return nil, false, nil
}

func quizFromDoc(dq docQuiz) *Quiz {
	q := &Quiz{TotalScore: dq.TotalScore}
	for _, question := range dq.Questions {
		nq := Question{Prompt: question.Name, Hint: question.Hint, Points: question.Points}
		for _, a := range question.Answers {
			nq.Answers = append(nq.Answers, Answer{Label: a.Text, Correct: bool(a.IsCorrect)})
		}
		q.Questions = append(q.Questions, nq)
	}
	return q
}

// Encode serializes a node list back into the wire format. Encode and Decode
// round-trip: Decode(Encode(nodes)) yields an equal node list.
func Encode(nodes []*Node) ([]byte, error) {
	root := docRoot{Content: encodeNodes(nodes)}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeNodes(nodes []*Node) []docNode {
	out := make([]docNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, encodeNode(n))
	}
	return out
}

func encodeNode(n *Node) docNode {
	dn := docNode{Type: n.Kind.String(), Name: n.Name}
	switch n.Kind {
	case KindNavigation:
		dn.Content = mustMarshal(encodeNodes(n.Children))
	case KindArticle:
		blocks := make([]docBlock, 0, len(n.Blocks))
		for _, b := range n.Blocks {
			blocks = append(blocks, docBlock{Type: b.Kind.String(), Content: b.Payload, Caption: b.Caption})
		}
		dn.Content = mustMarshal(blocks)
	case KindQuiz:
		dn.Content = mustMarshal(quizToDoc(n.Quiz))
	}
	return dn
}

func quizToDoc(q *Quiz) docQuiz {
	dq := docQuiz{TotalScore: q.TotalScore, Questions: make([]docQuestion, 0, len(q.Questions))}
	for _, question := range q.Questions {
		dques := docQuestion{
			Name:   question.Prompt,
			Hint:   question.Hint,
			Points: question.Points,
		}
		for _, a := range question.Answers {
			dques.Answers = append(dques.Answers, docAnswer{Text: a.Label, IsCorrect: flexBool(a.Correct)})
		}
		dq.Questions = append(dq.Questions, dques)
	}
	return dq
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// Only reachable on unmarshalable values, which the node model
		// cannot contain.
		panic(err)
	}
	return b
}

func blockKindFromTag(tag string) (BlockKind, bool) {
	switch tag {
	case "text":
		return BlockText, true
	case "image":
		return BlockImage, true
	case "video":
		return BlockVideo, true
	}
	return 0, false
}
