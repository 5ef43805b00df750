package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxXMLDepth bounds element nesting in word/document.xml.
const maxXMLDepth = 256

var errXMLDepth = errors.New("document.xml exceeds maximum nesting depth")

// readDOCX returns body paragraphs first, then table rows.
func readDOCX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", &ExtractionError{Format: "DOCX", Path: path, Err: fmt.Errorf("open zip: %w", err)}
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", &ExtractionError{Format: "DOCX", Path: path, Err: errors.New("word/document.xml not found in archive")}
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", &ExtractionError{Format: "DOCX", Path: path, Err: fmt.Errorf("open document.xml: %w", err)}
	}
	defer rc.Close()

	text, err := parseDocumentXML(rc)
	if err != nil {
		return "", &ExtractionError{Format: "DOCX", Path: path, Err: err}
	}
	return text, nil
}

func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var paragraphs, tables strings.Builder
	depth := 0
	bodyDepth := -1

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return "", errXMLDepth
			}
			if bodyDepth < 0 {
				if t.Name.Local == "body" {
					bodyDepth = depth
				}
				continue
			}
			if depth != bodyDepth+1 {
				continue
			}

			switch t.Name.Local {
			case "p":
				text, err := readParagraph(dec, depth)
				if err != nil {
					return "", err
				}
				if strings.TrimSpace(text) != "" {
					paragraphs.WriteString(text)
					paragraphs.WriteByte('\n')
				}
			case "tbl":
				rows, err := readTable(dec, depth)
				if err != nil {
					return "", err
				}
				for _, row := range rows {
					for _, cell := range row {
						if strings.TrimSpace(cell) != "" {
							tables.WriteString(cell)
							tables.WriteByte(' ')
						}
					}
					tables.WriteByte('\n')
				}
			default:
				if err := dec.Skip(); err != nil {
					return "", fmt.Errorf("parse document.xml: %w", err)
				}
			}
			// The readers consumed the matching end element.
			depth--

		case xml.EndElement:
			if depth == bodyDepth {
				bodyDepth = -2 // body closed; ignore anything after it
			}
			depth--
		}
	}

	return paragraphs.String() + tables.String(), nil
}

// readParagraph consumes a w:p element whose start tag has been read.
func readParagraph(dec *xml.Decoder, depth int) (string, error) {
	var b strings.Builder
	level := 1
	inText := false

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("parse paragraph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			// Text boxes and drawings are anchored in the paragraph but are
			// not part of its text; Word also writes them twice, once per
			// mc:Choice and mc:Fallback.
			case "pPr", "rPr", "AlternateContent", "drawing", "pict", "txbxContent", "del":
				if err := dec.Skip(); err != nil {
					return "", fmt.Errorf("parse paragraph: %w", err)
				}
				continue
			}
			level++
			if depth+level > maxXMLDepth {
				return "", errXMLDepth
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			level--
			if level == 0 {
				return b.String(), nil
			}
		}
	}
}

// readTable consumes a w:tbl element and returns the text of each cell by row.
func readTable(dec *xml.Decoder, depth int) ([][]string, error) {
	var rows [][]string
	level := 1

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse table: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tblPr", "tblGrid", "trPr":
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("parse table: %w", err)
				}
				continue
			case "tc":
				if len(rows) == 0 {
					rows = append(rows, nil)
				}
				cell, err := readCell(dec, depth+level+1)
				if err != nil {
					return nil, err
				}
				rows[len(rows)-1] = append(rows[len(rows)-1], cell)
				continue
			case "tr":
				rows = append(rows, nil)
			}
			level++
			if depth+level > maxXMLDepth {
				return nil, errXMLDepth
			}
		case xml.EndElement:
			level--
			if level == 0 {
				return rows, nil
			}
		}
	}
}

// readCell consumes a w:tc element. Its paragraphs are joined with newlines;
// a nested table contributes one line per row.
func readCell(dec *xml.Decoder, depth int) (string, error) {
	var lines []string
	level := 1

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("parse table cell: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tcPr":
				if err := dec.Skip(); err != nil {
					return "", fmt.Errorf("parse table cell: %w", err)
				}
				continue
			case "p":
				text, err := readParagraph(dec, depth+level)
				if err != nil {
					return "", err
				}
				lines = append(lines, text)
				continue
			case "tbl":
				rows, err := readTable(dec, depth+level)
				if err != nil {
					return "", err
				}
				for _, row := range rows {
					var cells []string
					for _, c := range row {
						if strings.TrimSpace(c) != "" {
							cells = append(cells, c)
						}
					}
					lines = append(lines, strings.Join(cells, " "))
				}
				continue
			}
			level++
			if depth+level > maxXMLDepth {
				return "", errXMLDepth
			}
		case xml.EndElement:
			level--
			if level == 0 {
				return strings.Join(lines, "\n"), nil
			}
		}
	}
}
