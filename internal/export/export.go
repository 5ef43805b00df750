// Package export renders generated questions as plain text, JSON or XLSX.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/abhisek/docquiz/internal/questiongen"
)

// Format names an export file format.
type Format string

const (
	TXT  Format = "txt"
	JSON Format = "json"
	XLSX Format = "xlsx"
)

// ParseFormat accepts "txt", "json" or "xlsx" with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case TXT, JSON, XLSX:
		return f, nil
	case "text", "":
		return TXT, nil
	}
	return "", fmt.Errorf("unknown export format %q (want txt, json or xlsx)", s)
}

// ContentType returns the MIME type of an export in format f.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/plain; charset=utf-8"
}

// FileName returns the download name for questions generated from source,
// e.g. "questions_biology.txt" for "biology.pdf".
func FileName(source string, f Format) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("questions_%s.%s", stem, f)
}

// Group holds the questions sharing one type label.
type Group struct {
	Type      string
	Questions []questiongen.Question
}

// unknownType labels questions that carry no type.
const unknownType = "Unknown"

// GroupByType groups questions by their type label in order of first
// appearance.
func GroupByType(questions []questiongen.Question) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, q := range questions {
		t := q.Type
		if t == "" {
			t = unknownType
		}
		i, ok := index[t]
		if !ok {
			i = len(groups)
			index[t] = i
			groups = append(groups, Group{Type: t})
		}
		groups[i].Questions = append(groups[i].Questions, q)
	}
	return groups
}

// Write renders questions in format f to w.
func Write(w io.Writer, f Format, source string, questions []questiongen.Question) error {
	switch f {
	case TXT:
		_, err := io.WriteString(w, FormatText(questions, source))
		return err
	case JSON:
		return WriteJSON(w, source, questions)
	case XLSX:
		return WriteXLSX(w, source, questions)
	}
	return fmt.Errorf("unknown export format %q", f)
}
