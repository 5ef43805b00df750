// Package pipeline runs extraction once and question generation for each
// selected type.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/extract"
	"github.com/abhisek/docquiz/internal/llm"
	"github.com/abhisek/docquiz/internal/questiongen"
)

// ErrEmptyContent is returned when a document yields no text.
var ErrEmptyContent = errors.New("no text content could be extracted from the document")

// ErrNoTypes is returned when no question type is selected.
var ErrNoTypes = errors.New("please select at least one question type")

// Extractor turns a document into text.
type Extractor interface {
	Extract(doc extract.Document) (string, error)
}

// Generator produces questions of one type.
type Generator interface {
	Generate(ctx context.Context, text string, qt questiongen.QuestionType, count int) ([]questiongen.Question, error)
}

// Input names a document and what to generate from it.
type Input struct {
	Path  string
	Ext   string
	Name  string // shown in exports; defaults to the base name of Path
	Types []questiongen.QuestionType
	Count int
}

// Result is the outcome of one run. Questions keeps the order in which the
// types were requested.
type Result struct {
	RunID     string
	Source    string
	Text      string
	Types     []questiongen.QuestionType
	Questions []questiongen.Question
	Failures  map[questiongen.QuestionType]error
	Generated map[questiongen.QuestionType]int
	Duration  time.Duration
}

// Failed reports whether every requested type failed.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0 && len(r.Generated) == 0
}

// Pipeline wires an Extractor to a Generator.
type Pipeline struct {
	extractor Extractor
	generator Generator
	logger    *zap.Logger
}

// New creates a Pipeline. logger may be nil.
func New(extractor Extractor, generator Generator, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{extractor: extractor, generator: generator, logger: logger}
}

// Run extracts the document and generates questions for each selected type.
// Extraction failures end the run; a generation failure is recorded for its
// type and the remaining types still run.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	if len(in.Types) == 0 {
		return nil, ErrNoTypes
	}
	if err := questiongen.CheckCount(in.Count); err != nil {
		return nil, err
	}

	text, err := p.extractor.Extract(extract.Document{Path: in.Path, Ext: in.Ext})
	if err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = filepath.Base(in.Path)
	}
	return p.RunText(ctx, name, text, in.Types, in.Count)
}

// RunText generates questions from already extracted text.
func (p *Pipeline) RunText(ctx context.Context, source, text string, types []questiongen.QuestionType, count int) (*Result, error) {
	if len(types) == 0 {
		return nil, ErrNoTypes
	}
	if err := questiongen.CheckCount(count); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	runID := uuid.NewString()
	ctx = llm.WithRunID(ctx, runID)
	logger := p.logger.With(zap.String("run_id", runID), zap.String("source", source))
	start := time.Now()

	res := &Result{
		RunID:     runID,
		Source:    source,
		Text:      text,
		Types:     types,
		Failures:  make(map[questiongen.QuestionType]error),
		Generated: make(map[questiongen.QuestionType]int),
	}

	for _, qt := range types {
		if err := ctx.Err(); err != nil {
			res.Failures[qt] = err
			continue
		}

		qs, err := p.generator.Generate(ctx, text, qt, count)
		if err != nil {
			logger.Warn("question generation failed", zap.String("type", string(qt)), zap.Error(err))
			res.Failures[qt] = err
			continue
		}
		res.Generated[qt] = len(qs)
		res.Questions = append(res.Questions, qs...)
		logger.Info("questions generated", zap.String("type", string(qt)), zap.Int("count", len(qs)))
	}

	res.Duration = time.Since(start)
	return res, nil
}
