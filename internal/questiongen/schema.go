package questiongen

import (
	"fmt"

	"github.com/abhisek/docquiz/internal/llm"
)

// questionSetSchema describes the {"questions": [...]} object returned for
// one question type. It only requires what every usable entry has; option
// count, answer membership and the type label are checked after decoding so
// that one malformed entry does not discard the whole set. Providers with a
// strict structured-output mode derive their closed form from it.
func questionSetSchema(t QuestionType) *llm.Schema {
	item := map[string]any{
		"question": map[string]any{
			"type":        "string",
			"description": "The question text",
		},
		"answer": map[string]any{
			"type":        "string",
			"description": answerDescription(t),
		},
		"type": map[string]any{
			"type":        "string",
			"description": fmt.Sprintf("The question type label, %q", t.Label()),
		},
	}

	if t == TypeMCQ {
		item["options"] = map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Exactly 4 answer choices",
		}
	}

	return &llm.Schema{
		Name:        "question-set-" + string(t),
		Description: t.Label() + " questions generated from a document",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":       "object",
						"properties": item,
						"required":   []any{"question", "answer"},
					},
				},
			},
		},
	}
}

func answerDescription(t QuestionType) string {
	switch t {
	case TypeShort:
		return "A concise answer of 1-3 sentences"
	case TypeLong:
		return "A detailed answer in paragraph form"
	default:
		return "The correct answer, identical to one of the options"
	}
}
