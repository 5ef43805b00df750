package questiongen

import "fmt"

// ValidationError describes a request rejected before any remote call.
type ValidationError struct {
	Field   string // "type", "count" or "text"
	Message string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GenerationError wraps any failure while asking the model for questions of
// one type: submission, transport or response parsing.
type GenerationError struct {
	Type QuestionType
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("Error generating %s questions: %v", e.Type.Label(), e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
