package extractors

import (
	"strings"
)

const (
	positionIDStarred = "Position ID*"
	// continuation lines may sit this many line heights below the last row
	continuationGap = 1.5
	// rows carrying a Position ID may sit this many line heights below
	rowGap = 3
	// points a continuation cell may overhang its column
	columnSlack = 2.0
)

// pdfTable is a table recovered from text geometry. Columns are anchored on
// the header cells; boundaries sit halfway between neighbouring headers.
type pdfTable struct {
	labels     []string
	boundaries []float64
	idColumn   int
	rows       [][]string
	lastY      float64
	lineHeight float64
}

// detectTableRows finds every table whose header carries a "Position ID"
// column and returns one map per data row keyed by header label. Lines with
// an empty Position ID cell continue the previous row only when they sit
// directly below it and every cell stays inside one column; any other line
// ends the table. Page-number lines are ignored.
func detectTableRows(pages []PdfPage) []map[string]string {
	var rows []map[string]string

	for _, page := range pages {
		var table *pdfTable
		flush := func() {
			if table != nil {
				rows = append(rows, table.records()...)
			}
			table = nil
		}

		for _, line := range page.Lines {
			if header, ok := newPdfTable(line); ok {
				flush()
				table = header
				continue
			}
			if table == nil || isPageNumberLine(line.Text()) {
				continue
			}
			if !table.add(line) {
				flush()
			}
		}
		flush()
	}

	return rows
}

func newPdfTable(line PdfLine) (*pdfTable, bool) {
	idColumn := -1
	for i, cell := range line.Cells {
		if cell.Text == FieldPositionID || cell.Text == positionIDStarred {
			idColumn = i
			break
		}
	}
	if idColumn < 0 {
		return nil, false
	}

	t := &pdfTable{
		labels:     make([]string, len(line.Cells)),
		boundaries: make([]float64, len(line.Cells)-1),
		idColumn:   idColumn,
		lastY:      line.Y,
		lineHeight: fontSize(line.FontSize) * 1.2,
	}
	for i, cell := range line.Cells {
		t.labels[i] = cell.Text
		if i > 0 {
			t.boundaries[i-1] = (line.Cells[i-1].EndX + cell.X) / 2
		}
	}
	return t, true
}

func (t *pdfTable) column(cell PdfCell) int {
	center := (cell.X + cell.EndX) / 2
	for i, boundary := range t.boundaries {
		if center < boundary {
			return i
		}
	}
	return len(t.boundaries)
}

// fits reports whether cell lies inside the column its center falls in.
func (t *pdfTable) fits(cell PdfCell) bool {
	col := t.column(cell)
	if col > 0 && cell.X < t.boundaries[col-1]-columnSlack {
		return false
	}
	if col < len(t.boundaries) && cell.EndX > t.boundaries[col]+columnSlack {
		return false
	}
	return true
}

// add places line into the table and reports whether it belonged there.
func (t *pdfTable) add(line PdfLine) bool {
	gap := t.lastY - line.Y
	if gap > t.lineHeight*rowGap {
		return false
	}

	values := make([]string, len(t.labels))
	for _, cell := range line.Cells {
		col := t.column(cell)
		values[col] = joinCell(values[col], cell.Text)
	}

	if values[t.idColumn] != "" {
		t.rows = append(t.rows, values)
		t.lastY = line.Y
		return true
	}

	if gap > t.lineHeight*continuationGap {
		return false
	}
	for _, cell := range line.Cells {
		if !t.fits(cell) {
			return false
		}
	}
	t.lastY = line.Y

	if len(t.rows) == 0 {
		// wrapped header labels
		for i, v := range values {
			t.labels[i] = joinCell(t.labels[i], v)
		}
		return true
	}
	last := t.rows[len(t.rows)-1]
	for i, v := range values {
		last[i] = joinCell(last[i], v)
	}
	return true
}

func (t *pdfTable) records() []map[string]string {
	records := make([]map[string]string, 0, len(t.rows))
	for _, row := range t.rows {
		record := make(map[string]string, len(row))
		for i, v := range row {
			if v == "" {
				continue
			}
			record[normalizeLabel(t.labels[i])] = v
		}
		records = append(records, record)
	}
	return records
}

func joinCell(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// normalizeLabel drops footnote asterisks, so "Position ID*" becomes
// "Position ID".
func normalizeLabel(label string) string {
	return strings.TrimSpace(strings.Trim(label, "*"))
}
