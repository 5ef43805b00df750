package extract

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for any declared extension other than
// .pdf, .docx or .txt.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// UnsupportedFormatError carries the rejected extension.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q", e.Ext)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// ExtractionError indicates the file could not be opened or parsed as the
// declared format.
type ExtractionError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error extracting %s text from %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
