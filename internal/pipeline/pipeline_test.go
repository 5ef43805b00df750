package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/extract"
	"github.com/abhisek/docquiz/internal/llm"
	"github.com/abhisek/docquiz/internal/questiongen"
)

const lesson = `The water cycle describes how water evaporates from oceans, condenses
into clouds, and returns to the surface as precipitation before flowing back
to the sea through rivers and groundwater.`

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Extract(extract.Document) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubGenerator struct {
	results map[questiongen.QuestionType][]questiongen.Question
	errs    map[questiongen.QuestionType]error
	order   []questiongen.QuestionType
	runIDs  []string
}

func (s *stubGenerator) Generate(ctx context.Context, _ string, qt questiongen.QuestionType, _ int) ([]questiongen.Question, error) {
	s.order = append(s.order, qt)
	s.runIDs = append(s.runIDs, llm.RunIDFrom(ctx))
	if err := s.errs[qt]; err != nil {
		return nil, err
	}
	return s.results[qt], nil
}

func TestRun_NoTypesSelected(t *testing.T) {
	ex := &stubExtractor{text: lesson}
	p := New(ex, &stubGenerator{}, zap.NewNop())

	_, err := p.Run(context.Background(), Input{Path: "notes.txt", Ext: ".txt"})
	require.ErrorIs(t, err, ErrNoTypes)
	assert.Zero(t, ex.calls, "extraction must not run without a selected type")
}

func TestRun_RejectsCountBeforeExtraction(t *testing.T) {
	for _, count := range []int{0, -1, 21} {
		ex := &stubExtractor{text: lesson}
		gen := &stubGenerator{}
		p := New(ex, gen, zap.NewNop())

		_, err := p.Run(context.Background(), Input{
			Path:  "notes.txt",
			Ext:   ".txt",
			Types: []questiongen.QuestionType{questiongen.TypeShort},
			Count: count,
		})
		var vErr *questiongen.ValidationError
		require.ErrorAs(t, err, &vErr, "count %d", count)
		assert.Equal(t, "count", vErr.Field)
		assert.Zero(t, ex.calls, "count %d", count)
		assert.Empty(t, gen.order)
	}
}

func TestRun_EmptyContent(t *testing.T) {
	gen := &stubGenerator{}
	p := New(&stubExtractor{text: "   \n\t "}, gen, zap.NewNop())

	_, err := p.Run(context.Background(), Input{
		Path:  "blank.pdf",
		Ext:   ".pdf",
		Types: []questiongen.QuestionType{questiongen.TypeShort},
		Count: 3,
	})
	require.ErrorIs(t, err, ErrEmptyContent)
	assert.Empty(t, gen.order, "no generation for empty content")
}

func TestRun_ExtractionErrorIsTerminal(t *testing.T) {
	extErr := &extract.ExtractionError{Format: "PDF", Path: "x.pdf", Err: errors.New("corrupt")}
	gen := &stubGenerator{}
	p := New(&stubExtractor{err: extErr}, gen, zap.NewNop())

	_, err := p.Run(context.Background(), Input{
		Path:  "x.pdf",
		Ext:   ".pdf",
		Types: questiongen.AllTypes,
		Count: 3,
	})
	var ee *extract.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Empty(t, gen.order)
}

func TestRun_FailureIsolation(t *testing.T) {
	short := []questiongen.Question{{Question: "Q1", Answer: "A1", Type: "Short Answer"}}
	mcq := []questiongen.Question{
		{Question: "Q2", Answer: "B", Type: "Multiple Choice", Options: []string{"A", "B", "C", "D"}},
		{Question: "Q3", Answer: "C", Type: "Multiple Choice", Options: []string{"A", "B", "C", "D"}},
	}
	longErr := &questiongen.GenerationError{Type: questiongen.TypeLong, Err: errors.New("timeout")}

	gen := &stubGenerator{
		results: map[questiongen.QuestionType][]questiongen.Question{
			questiongen.TypeShort: short,
			questiongen.TypeMCQ:   mcq,
		},
		errs: map[questiongen.QuestionType]error{questiongen.TypeLong: longErr},
	}
	p := New(&stubExtractor{text: lesson}, gen, zap.NewNop())

	res, err := p.Run(context.Background(), Input{
		Path:  "/tmp/uploads/water-cycle.txt",
		Ext:   ".txt",
		Types: []questiongen.QuestionType{questiongen.TypeShort, questiongen.TypeLong, questiongen.TypeMCQ},
		Count: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, []questiongen.QuestionType{questiongen.TypeShort, questiongen.TypeLong, questiongen.TypeMCQ}, gen.order)
	assert.Equal(t, "water-cycle.txt", res.Source)
	assert.Len(t, res.Questions, 3)
	assert.Equal(t, "Q1", res.Questions[0].Question)
	assert.Equal(t, "Q3", res.Questions[2].Question)
	assert.Equal(t, map[questiongen.QuestionType]int{questiongen.TypeShort: 1, questiongen.TypeMCQ: 2}, res.Generated)
	require.Contains(t, res.Failures, questiongen.TypeLong)
	assert.ErrorIs(t, res.Failures[questiongen.TypeLong], longErr)
	assert.False(t, res.Failed())

	// Every call in a run shares one run ID.
	require.Len(t, gen.runIDs, 3)
	assert.NotEmpty(t, gen.runIDs[0])
	assert.Equal(t, res.RunID, gen.runIDs[0])
	assert.Equal(t, gen.runIDs[0], gen.runIDs[2])
}

func TestRun_NameOverride(t *testing.T) {
	p := New(&stubExtractor{text: lesson}, &stubGenerator{}, nil)

	res, err := p.Run(context.Background(), Input{
		Path:  "/tmp/docquiz-upload-123.pdf",
		Ext:   ".pdf",
		Name:  "Biology Notes.pdf",
		Types: []questiongen.QuestionType{questiongen.TypeShort},
		Count: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Biology Notes.pdf", res.Source)
}

func TestRunText_AllFailed(t *testing.T) {
	gen := &stubGenerator{errs: map[questiongen.QuestionType]error{
		questiongen.TypeShort: errors.New("boom"),
	}}
	p := New(nil, gen, nil)

	res, err := p.RunText(context.Background(), "notes", lesson, []questiongen.QuestionType{questiongen.TypeShort}, 3)
	require.NoError(t, err)
	assert.True(t, res.Failed())
}

func TestRunText_CancelledContext(t *testing.T) {
	gen := &stubGenerator{}
	p := New(nil, gen, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := p.RunText(ctx, "notes", lesson, questiongen.AllTypes, 3)
	require.NoError(t, err)
	assert.Empty(t, gen.order)
	assert.Len(t, res.Failures, 3)
}

func TestRun_EndToEndWithMockProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.txt")
	require.NoError(t, os.WriteFile(path, []byte(lesson), 0o644))

	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"questions": [{"question": "Where do clouds come from?", "answer": "Condensed water vapour.", "type": "Short Answer"}]}`)},
		llm.MockResponse{Content: json.RawMessage(`{"questions": [{"question": "What returns water to the sea?", "options": ["Rivers", "Wind", "Sunlight", "Rocks"], "answer": "rivers", "type": "Multiple Choice"}]}`)},
	)
	gen := questiongen.New(mock, questiongen.DefaultConfig(), zap.NewNop())
	p := New(extract.New(zap.NewNop()), gen, zap.NewNop())

	res, err := p.Run(context.Background(), Input{
		Path:  path,
		Ext:   "TXT",
		Types: []questiongen.QuestionType{questiongen.TypeShort, questiongen.TypeMCQ},
		Count: 1,
	})
	require.NoError(t, err)
	require.Len(t, res.Questions, 2)
	assert.Equal(t, "Short Answer", res.Questions[0].Type)
	assert.Equal(t, "Rivers", res.Questions[1].Answer)
	assert.Empty(t, res.Failures)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRun_ShortAnswersFromTXT(t *testing.T) {
	text := strings.Repeat("Rivers carry water back to the ocean. ", 6)[:200]
	path := filepath.Join(t.TempDir(), "rivers.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions": [
		{"question": "Where do rivers carry water?", "answer": "Back to the ocean.", "type": "Short Answer"},
		{"question": "What do rivers carry?", "answer": "Water.", "type": "Short Answer"}
	]}`)})
	gen := questiongen.New(mock, questiongen.DefaultConfig(), zap.NewNop())
	p := New(extract.New(zap.NewNop()), gen, zap.NewNop())

	res, err := p.Run(context.Background(), Input{
		Path:  path,
		Ext:   ".txt",
		Types: []questiongen.QuestionType{questiongen.TypeShort},
		Count: 2,
	})
	require.NoError(t, err)
	require.Len(t, res.Questions, 2)
	for _, q := range res.Questions {
		assert.NotEmpty(t, q.Question)
		assert.NotEmpty(t, q.Answer)
		assert.Equal(t, "Short Answer", q.Type)
	}
	assert.Equal(t, []questiongen.QuestionType{questiongen.TypeShort}, res.Types)
	assert.Equal(t, 2, res.Generated[questiongen.TypeShort])
}
