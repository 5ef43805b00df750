// Package extract turns PDF, DOCX and plain-text files into a single
// normalised text string.
package extract

import (
	"strings"

	"go.uber.org/zap"
)

// Supported extensions.
const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
	ExtTXT  = ".txt"
)

// PreviewLimit is the number of characters shown when previewing extracted text.
const PreviewLimit = 4000

// Document is a file on disk together with its declared type.
type Document struct {
	Path string
	Ext  string
}

// Extractor dispatches a Document to the reader for its declared format.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor. logger may be nil.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

var defaultExtractor = New(nil)

// Extract reads the file at path as the format named by ext.
func Extract(path, ext string) (string, error) {
	return defaultExtractor.Extract(Document{Path: path, Ext: ext})
}

// Extract returns the document's text with surrounding whitespace trimmed.
// The file is not touched when the extension is unsupported.
func (e *Extractor) Extract(doc Document) (string, error) {
	ext := NormalizeExt(doc.Ext)

	var (
		text string
		err  error
	)
	switch ext {
	case ExtPDF:
		text, err = readPDF(doc.Path)
	case ExtDOCX:
		text, err = readDOCX(doc.Path)
	case ExtTXT:
		text, err = readTXT(doc.Path)
	default:
		return "", &UnsupportedFormatError{Ext: doc.Ext}
	}
	if err != nil {
		e.logger.Debug("extraction failed",
			zap.String("path", doc.Path),
			zap.String("format", ext),
			zap.Error(err))
		return "", err
	}

	text = strings.TrimSpace(text)
	e.logger.Debug("extracted text",
		zap.String("path", doc.Path),
		zap.String("format", ext),
		zap.Int("characters", len([]rune(text))))
	return text, nil
}

// NormalizeExt lowercases ext and adds a leading dot when missing.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// IsSupported reports whether ext names a format Extract can read.
func IsSupported(ext string) bool {
	switch NormalizeExt(ext) {
	case ExtPDF, ExtDOCX, ExtTXT:
		return true
	}
	return false
}

// SupportedExtensions lists the accepted extensions.
func SupportedExtensions() []string {
	return []string{ExtPDF, ExtDOCX, ExtTXT}
}

// Preview returns the first limit characters of text followed by "..." when
// text is longer.
func Preview(text string, limit int) string {
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}
