// Package questiongen asks a language model for quiz questions about a
// piece of text.
package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/llm"
)

// Generator produces questions of one type per call using an LLM provider.
// It is safe for concurrent use.
type Generator struct {
	provider llm.Provider
	config   Config
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a Generator. logger may be nil. Limits left at zero take the
// DefaultConfig values, so the input ceiling and minimum length always apply.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = def.MaxInputChars
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = def.MinTextLength
	}
	return &Generator{
		provider: provider,
		config:   cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

// questionSetOutput is the raw model response before local checks.
type questionSetOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
}

// Generate asks the model for count questions of type qt about text.
// Request problems return *ValidationError before any remote call; every
// later failure is a *GenerationError.
func (g *Generator) Generate(ctx context.Context, text string, qt QuestionType, count int) ([]Question, error) {
	if err := g.Validate(Request{Text: text, Type: qt, Count: count}); err != nil {
		return nil, err
	}

	tpl := templates[qt]
	ctx = llm.WithPurpose(ctx, "question-gen:"+string(qt))

	req := llm.Request{
		System: tpl.persona,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(tpl, Truncate(text, g.config.MaxInputChars), count)},
		},
		Schema:      tpl.schema,
		MaxTokens:   tpl.maxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, &GenerationError{Type: qt, Err: err}
	}

	var raw questionSetOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &GenerationError{Type: qt, Err: fmt.Errorf("parse model response: %w", err)}
	}

	questions := g.sanitize(qt, raw.Questions)
	g.logger.Debug("generated questions",
		zap.String("run_id", llm.RunIDFrom(ctx)),
		zap.String("type", string(qt)),
		zap.Int("requested", count),
		zap.Int("returned", len(raw.Questions)),
		zap.Int("kept", len(questions)))
	return questions, nil
}

// CheckCount rejects a per-type question count outside 1-20.
func CheckCount(count int) error {
	if count < 1 || count > 20 {
		return countError(count)
	}
	return nil
}

func countError(count int) error {
	return &ValidationError{Field: "count", Message: fmt.Sprintf("Number of questions must be between 1 and 20, got %d", count)}
}

// Validate checks a request in order: type, count, then text length.
func (g *Generator) Validate(r Request) error {
	if err := g.validate.Struct(r); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			switch fieldErrs[0].StructField() {
			case "Type":
				return &ValidationError{Field: "type", Message: fmt.Sprintf("Unsupported question type: %s", r.Type)}
			case "Count":
				return countError(r.Count)
			}
		}
		return &ValidationError{Field: "request", Message: err.Error()}
	}

	if len([]rune(strings.TrimSpace(r.Text))) < g.config.MinTextLength {
		return &ValidationError{Field: "text", Message: "Text content is too short to generate meaningful questions"}
	}
	return nil
}
