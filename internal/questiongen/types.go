package questiongen

import (
	"fmt"
	"strings"
)

// QuestionType selects one of the three question categories.
type QuestionType string

const (
	TypeShort QuestionType = "short"
	TypeLong  QuestionType = "long"
	TypeMCQ   QuestionType = "mcq"
)

// AllTypes lists the question types in display order.
var AllTypes = []QuestionType{TypeShort, TypeLong, TypeMCQ}

// Label returns the display label, e.g. "Multiple Choice".
func (t QuestionType) Label() string {
	switch t {
	case TypeShort:
		return "Short Answer"
	case TypeLong:
		return "Long Answer"
	case TypeMCQ:
		return "Multiple Choice"
	}
	return string(t)
}

// Valid reports whether t is one of the supported types.
func (t QuestionType) Valid() bool {
	_, ok := templates[t]
	return ok
}

// ParseType accepts a type code ("mcq") or its display label
// ("Multiple Choice"), case-insensitively.
func ParseType(s string) (QuestionType, error) {
	s = strings.TrimSpace(s)
	for _, t := range AllTypes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "type", Message: fmt.Sprintf("Unsupported question type: %s", s)}
}

// ParseTypes parses a comma-separated list, dropping duplicates and keeping
// the first occurrence order.
func ParseTypes(list string) ([]QuestionType, error) {
	var out []QuestionType
	seen := make(map[QuestionType]bool)
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseType(part)
		if err != nil {
			return nil, err
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// Question is a single generated question.
type Question struct {
	// Question is the prompt shown to the reader.
	Question string `json:"question"`

	// Answer is the expected answer. For multiple choice it equals one of
	// Options verbatim.
	Answer string `json:"answer"`

	// Type is the display label of the question type.
	Type string `json:"type"`

	// Options holds exactly four choices for multiple choice questions and
	// is empty otherwise.
	Options []string `json:"options,omitempty"`
}

// Request is a validated generation request.
type Request struct {
	Text  string
	Type  QuestionType `validate:"required,oneof=short long mcq"`
	Count int          `validate:"min=1,max=20"`
}
