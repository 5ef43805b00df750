package extract

import (
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// readTXT decodes the file as UTF-8, falling back to ISO-8859-1 which
// accepts every byte sequence.
func readTXT(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Format: "TXT", Path: path, Err: err}
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", &ExtractionError{Format: "TXT", Path: path, Err: err}
	}
	return string(decoded), nil
}
