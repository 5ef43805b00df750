package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	tests := []string{".rtf", "doc", ".md", "", ".pdfx"}
	for _, ext := range tests {
		t.Run(ext, func(t *testing.T) {
			// The path does not exist: the format check comes first.
			_, err := Extract("/nonexistent/file", ext)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedFormat))

			var ufe *UnsupportedFormatError
			require.True(t, errors.As(err, &ufe))
			assert.Equal(t, ext, ufe.Ext)
		})
	}
}

func TestExtract_ExtensionIsCaseInsensitive(t *testing.T) {
	path := writeFile(t, "notes.TXT", []byte("  Photosynthesis converts light into chemical energy.  \n"))

	for _, ext := range []string{".txt", ".TXT", "txt", "Txt"} {
		text, err := Extract(path, ext)
		require.NoError(t, err, ext)
		assert.Equal(t, "Photosynthesis converts light into chemical energy.", text, ext)
	}
}

func TestExtract_TXT(t *testing.T) {
	t.Run("utf8", func(t *testing.T) {
		path := writeFile(t, "a.txt", []byte("Größe und Maß\nzweite Zeile\n\n"))
		text, err := Extract(path, ".txt")
		require.NoError(t, err)
		assert.Equal(t, "Größe und Maß\nzweite Zeile", text)
	})

	t.Run("latin1 fallback", func(t *testing.T) {
		// "café au lait" in ISO-8859-1: é is the single byte 0xE9.
		path := writeFile(t, "b.txt", []byte("caf\xe9 au lait"))
		text, err := Extract(path, ".txt")
		require.NoError(t, err)
		assert.Equal(t, "café au lait", text)
	})

	t.Run("whitespace only", func(t *testing.T) {
		path := writeFile(t, "c.txt", []byte(" \n\t \n"))
		text, err := Extract(path, ".txt")
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Extract(filepath.Join(t.TempDir(), "missing.txt"), ".txt")
		var ee *ExtractionError
		require.True(t, errors.As(err, &ee))
		assert.Equal(t, "TXT", ee.Format)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestExtract_Idempotent(t *testing.T) {
	path := writeDOCX(t, `<w:p><w:r><w:t>Cells divide by mitosis.</w:t></w:r></w:p>`)

	first, err := Extract(path, ".docx")
	require.NoError(t, err)
	second, err := Extract(path, ".docx")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", PreviewLimit))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
	assert.Equal(t, "héé...", Preview("hééllo", 3))

	long := strings.Repeat("x", PreviewLimit+10)
	got := Preview(long, PreviewLimit)
	assert.Equal(t, PreviewLimit+3, len(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".docx", ".txt"}, SupportedExtensions())
	assert.True(t, IsSupported("PDF"))
	assert.False(t, IsSupported(".doc"))
}
