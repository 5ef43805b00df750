package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExtractUpload extracts text from an uploaded file. The bytes are written
// to a temporary file carrying the name's extension, and that file is removed
// before returning on every path. Unsupported names are rejected before
// anything is written.
func (e *Extractor) ExtractUpload(name string, r io.Reader) (string, error) {
	ext := filepath.Ext(name)
	if !IsSupported(ext) {
		return "", &UnsupportedFormatError{Ext: ext}
	}
	ext = NormalizeExt(ext)

	tmp, err := os.CreateTemp("", "docquiz-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return e.Extract(Document{Path: tmpPath, Ext: ext})
}

// ExtractUpload runs ExtractUpload on the default extractor.
func ExtractUpload(name string, r io.Reader) (string, error) {
	return defaultExtractor.ExtractUpload(name, r)
}
