package extractors

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	formatDOCX       = "docx"
	documentPartName = "word/document.xml"
)

// WordDocument is the part of a .docx body the SOW extractor needs: top-level
// paragraphs and top-level tables, both in document order.
type WordDocument struct {
	Paragraphs []string
	Tables     []WordTable
}

// WordTable holds cell texts row by row. Horizontally merged cells repeat
// their text once per grid column they span; vertically merged cells repeat
// the text of the cell that starts the merge.
type WordTable struct {
	Rows [][]string
}

// ParseWordDocument reads a .docx package.
func ParseWordDocument(data []byte) (*WordDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, formatError(formatDOCX, "not a Word (.docx) package", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPartName {
			part = f
			break
		}
	}
	if part == nil {
		return nil, formatError(formatDOCX, "package has no "+documentPartName, nil)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, formatError(formatDOCX, "cannot open document part", err)
	}
	defer rc.Close()

	doc, err := decodeWordBody(xml.NewDecoder(rc))
	if err != nil {
		return nil, formatError(formatDOCX, "malformed document part", err)
	}
	return doc, nil
}

func decodeWordBody(dec *xml.Decoder) (*WordDocument, error) {
	doc := &WordDocument{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "p":
			text, err := readParagraph(dec)
			if err != nil {
				return nil, err
			}
			doc.Paragraphs = append(doc.Paragraphs, text)
		case "tbl":
			table, err := readTable(dec)
			if err != nil {
				return nil, err
			}
			doc.Tables = append(doc.Tables, table)
		}
	}
}

// readParagraph consumes a w:p element and returns its visible text.
func readParagraph(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("paragraph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return "", fmt.Errorf("text run: %w", err)
				}
				b.WriteString(text)
				continue
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}

type wordCell struct {
	text   string
	span   int
	merged bool
}

func readTable(dec *xml.Decoder) (WordTable, error) {
	var table WordTable
	for {
		tok, err := dec.Token()
		if err != nil {
			return table, fmt.Errorf("table: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "tr" {
				if err := dec.Skip(); err != nil {
					return table, err
				}
				continue
			}
			cells, err := readRow(dec)
			if err != nil {
				return table, err
			}
			table.Rows = append(table.Rows, layoutRow(cells, table.Rows))
		case xml.EndElement:
			return table, nil
		}
	}
}

func readRow(dec *xml.Decoder) ([]wordCell, error) {
	var cells []wordCell
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("table row: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "tc" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			cell, err := readCell(dec)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		case xml.EndElement:
			return cells, nil
		}
	}
}

func readCell(dec *xml.Decoder) (wordCell, error) {
	cell := wordCell{span: 1}
	var paragraphs []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return cell, fmt.Errorf("table cell: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				text, err := readParagraph(dec)
				if err != nil {
					return cell, err
				}
				paragraphs = append(paragraphs, text)
			case "tcPr":
				if err := readCellProperties(dec, &cell); err != nil {
					return cell, err
				}
			default:
				// nested tables are not part of the cell text
				if err := dec.Skip(); err != nil {
					return cell, err
				}
			}
		case xml.EndElement:
			cell.text = strings.Join(paragraphs, "\n")
			return cell, nil
		}
	}
}

func readCellProperties(dec *xml.Decoder, cell *wordCell) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("cell properties: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "gridSpan":
				if n, err := strconv.Atoi(attr(t, "val")); err == nil && n > 1 {
					cell.span = n
				}
			case "vMerge":
				cell.merged = attr(t, "val") != "restart"
			}
			if err := dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// layoutRow expands spans and resolves vertical merges against the rows
// already read.
func layoutRow(cells []wordCell, previous [][]string) []string {
	var row []string
	for _, cell := range cells {
		text := cell.text
		if cell.merged && len(previous) > 0 {
			above := previous[len(previous)-1]
			if col := len(row); col < len(above) {
				text = above[col]
			}
		}
		for i := 0; i < cell.span; i++ {
			row = append(row, text)
		}
	}
	return row
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
