package content

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// quizSchema is the JSON schema a quiz ingestion payload must satisfy before
// it is written to the document. is_correct is allowed as boolean or string
// because authored quiz files exist in both forms; the codec canonicalizes to
// boolean on write.
var quizSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"total_score": map[string]any{"type": "number"},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":   map[string]any{"type": "string"},
					"hint":   map[string]any{"type": "string"},
					"points": map[string]any{"type": "number"},
					"answers": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"text": map[string]any{"type": "string"},
								"is_correct": map[string]any{
									"type": []any{"boolean", "string"},
								},
							},
							"required": []any{"text", "is_correct"},
						},
						"minItems": 1,
					},
				},
				"required": []any{"name", "hint", "points", "answers"},
			},
		},
	},
	"required": []any{"total_score", "questions"},
}

var (
	quizSchemaOnce     sync.Once
	quizSchemaCompiled *jsonschema.Schema
	quizSchemaErr      error
)

func compiledQuizSchema() (*jsonschema.Schema, error) {
	quizSchemaOnce.Do(func() {
		// The jsonschema compiler wants a parsed JSON value, so round-trip
		// the definition through encoding/json first.
		defBytes, err := json.Marshal(quizSchema)
		if err != nil {
			quizSchemaErr = fmt.Errorf("marshal quiz schema: %w", err)
			return
		}
		var parsed any
		if err := json.Unmarshal(defBytes, &parsed); err != nil {
			quizSchemaErr = fmt.Errorf("parse quiz schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const url = "schema://quiz.json"
		if err := c.AddResource(url, parsed); err != nil {
			quizSchemaErr = fmt.Errorf("add quiz schema resource: %w", err)
			return
		}
		quizSchemaCompiled, quizSchemaErr = c.Compile(url)
	})
	return quizSchemaCompiled, quizSchemaErr
}

// ParseQuizPayload validates and decodes a quiz ingestion payload. Any schema
// violation, or a question with no correct answer, rejects the payload with
// ErrValidation and nothing is stored.
func ParseQuizPayload(raw []byte) (*Quiz, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrValidation, err)
	}

	schema, err := compiledQuizSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var dq docQuiz
	if err := json.Unmarshal(raw, &dq); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	quiz := quizFromDoc(dq)
	for _, q := range quiz.Questions {
		if !hasCorrectAnswer(q) {
			return nil, fmt.Errorf("%w: question %q has no correct answer", ErrValidation, q.Prompt)
		}
	}
	return quiz, nil
}

func hasCorrectAnswer(q Question) bool {
	for _, a := range q.Answers {
		if a.Correct {
			return true
		}
	}
	return false
}
