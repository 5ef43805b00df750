package export

import (
	"encoding/json"
	"io"

	"github.com/abhisek/docquiz/internal/questiongen"
)

// jsonExport is the document written by WriteJSON.
type jsonExport struct {
	Source    string                 `json:"source"`
	Count     int                    `json:"count"`
	Questions []questiongen.Question `json:"questions"`
}

// WriteJSON writes questions as an indented JSON document.
func WriteJSON(w io.Writer, source string, questions []questiongen.Question) error {
	if questions == nil {
		questions = []questiongen.Question{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonExport{Source: source, Count: len(questions), Questions: questions})
}
