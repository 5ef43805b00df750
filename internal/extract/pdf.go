package extract

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// readPDF concatenates the text of every page in order, each followed by a
// newline. Pages without text contribute nothing.
func readPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ExtractionError{Format: "PDF", Path: path, Err: err}
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return "", &ExtractionError{Format: "PDF", Path: path, Err: fmt.Errorf("pdfcpu read: %w", err)}
	}

	pages := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pages = append(pages, pageText(ctx, pageNr))
	}
	return joinPages(pages), nil
}

// joinPages appends each page's text unchanged plus a newline, skipping
// pages that hold only whitespace.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}

func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// textFromContentStream walks the operators of a page content stream and
// collects the strings shown by Tj, TJ, ' and ". Line moves become newlines.
func textFromContentStream(data []byte) string {
	var (
		b        strings.Builder
		operands []operand
	)

	newline := func() {
		s := b.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
	}
	space := func() {
		s := b.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, " ") {
			b.WriteByte(' ')
		}
	}

	lx := &lexer{data: data}
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok.operand)
			continue
		}

		switch tok.op {
		case "Tj":
			if s, ok := lastString(operands); ok {
				b.WriteString(s)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].array != nil {
				for _, el := range operands[n-1].array {
					if el.isString {
						b.WriteString(el.str)
					} else if el.num <= -250 {
						// Large negative kerning is how most writers encode a word gap.
						space()
					}
				}
			}
		case "'", "\"":
			newline()
			if s, ok := lastString(operands); ok {
				b.WriteString(s)
			}
		case "T*":
			newline()
		case "Td", "TD":
			if n := len(operands); n >= 2 && operands[n-1].num != 0 {
				newline()
			} else {
				space()
			}
		case "ET":
			space()
		case "ID":
			lx.skipInlineImage()
		}
		operands = operands[:0]
	}

	return b.String()
}

func lastString(ops []operand) (string, bool) {
	if n := len(ops); n > 0 && ops[n-1].isString {
		return ops[n-1].str, true
	}
	return "", false
}

type tokenKind int

const (
	tokOperand tokenKind = iota
	tokOperator
)

type operand struct {
	isString bool
	str      string
	num      float64
	array    []operand
}

type token struct {
	kind    tokenKind
	op      string
	operand operand
}

// lexer tokenises the subset of the content stream grammar needed for text:
// literal and hex strings, arrays, numbers, names and operators.
type lexer struct {
	data []byte
	pos  int
}

func (l *lexer) next() (token, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return token{}, false
	}

	c := l.data[l.pos]
	switch {
	case c == '(':
		return token{kind: tokOperand, operand: operand{isString: true, str: l.literalString()}}, true
	case c == '<' && l.peek(1) == '<':
		l.skipDict()
		return l.next()
	case c == '<':
		return token{kind: tokOperand, operand: operand{isString: true, str: l.hexString()}}, true
	case c == '[':
		l.pos++
		return token{kind: tokOperand, operand: l.array()}, true
	case c == ']':
		l.pos++
		return l.next()
	case c == '/':
		l.pos++
		l.word()
		return token{kind: tokOperand}, true
	}

	w := l.word()
	if w == "" {
		l.pos++
		return l.next()
	}
	if n, err := strconv.ParseFloat(w, 64); err == nil {
		return token{kind: tokOperand, operand: operand{num: n}}, true
	}
	return token{kind: tokOperator, op: w}, true
}

func (l *lexer) array() operand {
	arr := operand{array: []operand{}}
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return arr
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return arr
		}
		tok, ok := l.next()
		if !ok {
			return arr
		}
		if tok.kind == tokOperand {
			arr.array = append(arr.array, tok.operand)
		}
	}
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case ' ', '\t', '\r', '\n', '\f', 0:
			l.pos++
		case '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// skipInlineImage moves past the binary data of a BI ... ID ... EI image.
func (l *lexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			isDelimiter(l.data[l.pos+2]) && l.pos > 0 && isDelimiter(l.data[l.pos-1]) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

func (l *lexer) skipDict() {
	depth := 0
	for l.pos < len(l.data) {
		if l.data[l.pos] == '<' && l.peek(1) == '<' {
			depth++
			l.pos += 2
			continue
		}
		if l.data[l.pos] == '>' && l.peek(1) == '>' {
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		l.pos++
	}
}

// literalString reads a balanced (...) string and resolves its escapes.
func (l *lexer) literalString() string {
	l.pos++ // (
	var raw []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.data):
			l.pos++
			raw = append(raw, unescape(l)...)
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				l.pos++
				return decodePDFBytes(raw)
			}
		}
		raw = append(raw, c)
		l.pos++
	}
	return decodePDFBytes(raw)
}

func unescape(l *lexer) []byte {
	c := l.data[l.pos]
	l.pos++
	switch c {
	case 'n':
		return []byte{'\n'}
	case 'r':
		return []byte{'\r'}
	case 't':
		return []byte{'\t'}
	case 'b':
		return []byte{'\b'}
	case 'f':
		return []byte{'\f'}
	case '\r':
		if l.pos < len(l.data) && l.data[l.pos] == '\n' {
			l.pos++
		}
		return nil
	case '\n':
		return nil
	}
	if c >= '0' && c <= '7' {
		val := int(c - '0')
		for i := 0; i < 2 && l.pos < len(l.data); i++ {
			d := l.data[l.pos]
			if d < '0' || d > '7' {
				break
			}
			val = val*8 + int(d-'0')
			l.pos++
		}
		return []byte{byte(val)}
	}
	return []byte{c}
}

func (l *lexer) hexString() string {
	l.pos++ // <
	start := l.pos
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		l.pos++
	}
	digits := strings.Map(func(r rune) rune {
		if strings.ContainsRune(" \t\r\n\f", r) {
			return -1
		}
		return r
	}, string(l.data[start:l.pos]))
	if l.pos < len(l.data) {
		l.pos++ // >
	}
	if len(digits)%2 == 1 {
		digits += "0"
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return ""
	}
	return decodePDFBytes(raw)
}

// decodePDFBytes maps single-byte simple-font strings to UTF-8 using the
// Windows-1252 table, which matches WinAnsiEncoding for printable text.
// UTF-16BE strings marked with a BOM are decoded as such.
func decodePDFBytes(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		if out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
