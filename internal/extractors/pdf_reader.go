package extractors

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	formatPDF       = "pdf"
	defaultFontSize = 10.0
)

// PdfCell is a run of text on one line, separated from its neighbours by a
// column-sized gap.
type PdfCell struct {
	X    float64
	EndX float64
	Text string
}

// PdfLine is a row of cells sharing a baseline. Y grows upward as in PDF user
// space.
type PdfLine struct {
	Y        float64
	FontSize float64
	Cells    []PdfCell
}

func (l PdfLine) Text() string {
	parts := make([]string, 0, len(l.Cells))
	for _, c := range l.Cells {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, " ")
}

type PdfPage struct {
	Number int
	Lines  []PdfLine
}

func (p PdfPage) Text() string {
	lines := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, l.Text())
	}
	return strings.Join(lines, "\n")
}

type pdfReader struct {
	log *zap.Logger
}

func (r *pdfReader) readFile(ctx context.Context, path string) ([]PdfPage, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, formatError(formatPDF, "failed to open PDF", err)
	}
	defer f.Close()

	return r.readPages(ctx, reader)
}

func (r *pdfReader) readBytes(ctx context.Context, data []byte) ([]PdfPage, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, formatError(formatPDF, "failed to open PDF", err)
	}

	return r.readPages(ctx, reader)
}

func (r *pdfReader) readPages(ctx context.Context, reader *pdf.Reader) ([]PdfPage, error) {
	totalPage := reader.NumPage()
	pages := make([]PdfPage, 0, totalPage)
	encodings := make(map[string]int)

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pdf extraction interrupted: %w", err)
		}

		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		texts, err := pageTexts(page)
		if err != nil {
			// Log error but continue with other pages
			r.log.Warn("skipping unreadable PDF page", zap.Int("page", pageIndex), zap.Error(err))
			continue
		}

		glyphs := make([]pdf.Text, 0, len(texts))
		for _, t := range texts {
			s, encoding := decodePDFText(t.S)
			encodings[encoding]++
			t.S = s
			glyphs = append(glyphs, t)
		}

		pages = append(pages, PdfPage{Number: pageIndex, Lines: groupLines(glyphs)})
	}

	if len(pages) == 0 {
		return nil, formatError(formatPDF, "no text content found in PDF", nil)
	}

	r.log.Debug("pdf pages read", zap.Int("pages", len(pages)), zap.Any("encodings", encodings))
	return pages, nil
}

// pageTexts guards against content streams the pdf package cannot interpret;
// it reports them through panics.
func pageTexts(page pdf.Page) (texts []pdf.Text, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed page content: %v", rec)
		}
	}()
	return page.Content().Text, nil
}

// groupLines clusters glyphs into lines by baseline, orders each line left to
// right and splits it into cells at wide gaps.
func groupLines(glyphs []pdf.Text) []PdfLine {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines []PdfLine
	var current []pdf.Text
	lineY := sorted[0].Y
	flush := func() {
		if line, ok := buildLine(current); ok {
			lines = append(lines, line)
		}
		current = current[:0]
	}

	for _, g := range sorted {
		if math.Abs(g.Y-lineY) > lineTolerance(g.FontSize) {
			flush()
			lineY = g.Y
		}
		current = append(current, g)
	}
	flush()

	return lines
}

func buildLine(glyphs []pdf.Text) (PdfLine, bool) {
	if len(glyphs) == 0 {
		return PdfLine{}, false
	}

	row := make([]pdf.Text, len(glyphs))
	copy(row, glyphs)
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	size := fontSize(row[0].FontSize)
	line := PdfLine{Y: row[0].Y, FontSize: size}

	var cell *PdfCell
	var text strings.Builder
	prevEnd := 0.0
	pendingSpace := false
	closeCell := func() {
		if cell == nil {
			return
		}
		cell.Text = strings.TrimSpace(text.String())
		if cell.Text != "" {
			line.Cells = append(line.Cells, *cell)
		}
		cell = nil
		text.Reset()
	}

	for _, g := range row {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			pendingSpace = true
			continue
		}

		gap := g.X - prevEnd
		switch {
		case cell == nil:
			cell = &PdfCell{X: g.X}
		case gap > size*1.5:
			closeCell()
			cell = &PdfCell{X: g.X}
		case pendingSpace || gap > size*0.2:
			text.WriteByte(' ')
		}
		pendingSpace = false

		text.WriteString(g.S)
		prevEnd = glyphEnd(g, size)
		cell.EndX = prevEnd
	}
	closeCell()

	return line, len(line.Cells) > 0
}

func glyphEnd(g pdf.Text, size float64) float64 {
	if g.W > 0 {
		return g.X + g.W
	}
	return g.X + size*0.5*float64(len([]rune(g.S)))
}

func lineTolerance(size float64) float64 {
	return math.Max(2, fontSize(size)*0.3)
}

func fontSize(size float64) float64 {
	if size <= 0 {
		return defaultFontSize
	}
	return size
}
