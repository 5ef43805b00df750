// Package render prints generation results to a terminal with lipgloss
// styling. Colors are downsampled to whatever the destination supports, so
// output piped to a file is plain text.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/docquiz/internal/export"
	"github.com/abhisek/docquiz/internal/extract"
	"github.com/abhisek/docquiz/internal/pipeline"
	"github.com/abhisek/docquiz/internal/questiongen"
	"github.com/abhisek/docquiz/internal/ui/theme"
)

// Questions renders questions grouped by type, in the same layout as the
// plain-text export.
func Questions(w io.Writer, source string, questions []questiongen.Question) error {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Questions Generated from: "+source) + "\n")
	b.WriteString(theme.Subtitle.Render(strings.Repeat("=", 50)) + "\n\n")

	for _, g := range export.GroupByType(questions) {
		b.WriteString(theme.Section.Render(g.Type+" Questions") + "\n")
		b.WriteString(theme.Subtitle.Render(strings.Repeat("-", 30)) + "\n\n")

		for i, q := range g.Questions {
			b.WriteString(theme.QuestionNumber.Render(fmt.Sprintf("Question %d:", i+1)))
			b.WriteString(" " + theme.Body.Render(q.Question) + "\n")
			if q.Type == questiongen.TypeMCQ.Label() {
				for j, opt := range q.Options {
					b.WriteString(theme.Option.Render(fmt.Sprintf("%c. %s", 'A'+j, opt)) + "\n")
				}
			}
			b.WriteString(theme.Answer.Render("Answer:") + " " + theme.Body.Render(q.Answer) + "\n\n")
		}
	}

	_, err := lipgloss.Fprint(w, b.String())
	return err
}

// StatusLines returns one plain message per requested type: a success count,
// an empty-result warning or the generation error.
func StatusLines(res *pipeline.Result) []string {
	lines := make([]string, 0, len(res.Types))
	for _, qt := range res.Types {
		lines = append(lines, statusLine(res, qt))
	}
	return lines
}

func statusLine(res *pipeline.Result, qt questiongen.QuestionType) string {
	if err, ok := res.Failures[qt]; ok {
		var genErr *questiongen.GenerationError
		if errors.As(err, &genErr) {
			return genErr.Error()
		}
		return fmt.Sprintf("Error generating %s questions: %v", qt.Label(), err)
	}
	if n := res.Generated[qt]; n > 0 {
		return fmt.Sprintf("Generated %d %s question(s)", n, qt.Label())
	}
	return fmt.Sprintf("No %s questions were generated", qt.Label())
}

// Summary renders the per-type status lines with success, warning and
// failure styling.
func Summary(w io.Writer, res *pipeline.Result) error {
	var b strings.Builder
	for _, qt := range res.Types {
		line := statusLine(res, qt)
		switch {
		case res.Failures[qt] != nil:
			b.WriteString(theme.Fail.Render("✗ "+line) + "\n")
		case res.Generated[qt] > 0:
			b.WriteString(theme.Ok.Render("✓ "+line) + "\n")
		default:
			b.WriteString(theme.Warn.Render("! "+line) + "\n")
		}
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d question(s) in %s", len(res.Questions), res.Duration.Round(time.Millisecond))) + "\n")

	_, err := lipgloss.Fprint(w, b.String())
	return err
}

// Preview renders extracted text truncated to limit characters.
func Preview(w io.Writer, source, text string, limit int) error {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Extracted Text Preview") + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · %d characters", source, len([]rune(text)))) + "\n\n")
	b.WriteString(theme.Body.Render(extract.Preview(text, limit)) + "\n")

	_, err := lipgloss.Fprint(w, b.String())
	return err
}

// Error renders a user-facing error line.
func Error(w io.Writer, msg string) error {
	_, err := lipgloss.Fprintln(w, theme.Fail.Render(msg))
	return err
}
