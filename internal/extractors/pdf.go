package extractors

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	appendixMarker        = "Appendix B"
	assignmentMarker      = "Overall Assignment Description"
	assignmentSplitMarker = "Overall Assignment Description:"
	appendixHeading       = "Appendix B: Position Descriptions"
	pdfDescriptionField   = "Description"
	classificationBanner  = "UNCLASSIFIED"
	bulletGlyph           = "\uf0b7"
)

// PdfSOWExtractor reads position tables and Appendix B narratives from a PDF
// statement of work.
type PdfSOWExtractor struct {
	log    *zap.Logger
	reader *pdfReader
}

func NewPdfSOWExtractor(log *zap.Logger) *PdfSOWExtractor {
	return &PdfSOWExtractor{log: log, reader: &pdfReader{log: log}}
}

func (e *PdfSOWExtractor) ExtractFile(ctx context.Context, path string) ([]RawPosition, error) {
	pages, err := e.reader.readFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, pages)
}

// ExtractBytes implements PositionExtractor.
func (e *PdfSOWExtractor) ExtractBytes(ctx context.Context, data []byte) ([]RawPosition, error) {
	pages, err := e.reader.readBytes(ctx, data)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, pages)
}

func (e *PdfSOWExtractor) Extract(ctx context.Context, pages []PdfPage) ([]RawPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pdf extraction interrupted: %w", err)
	}

	rows := detectTableRows(pages)
	if len(rows) == 0 {
		return nil, formatError(formatPDF, "no table with a Position ID column", nil)
	}

	descriptions, err := harvestPdfDescriptions(pages)
	if err != nil {
		return nil, err
	}

	positions := make([]RawPosition, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, e.buildRow(row, descriptions))
	}

	e.log.Debug("pdf SOW parsed",
		zap.Int("table_rows", len(rows)),
		zap.Int("descriptions", len(descriptions)),
		zap.Int("positions", len(positions)))

	return positions, nil
}

func (e *PdfSOWExtractor) buildRow(row map[string]string, descriptions map[int]Description) RawPosition {
	fields := map[string]string{
		FieldLocation:        row[FieldLocation],
		FieldSkillLevel:      row[FieldSkillLevel],
		FieldServiceCategory: row[FieldServiceCategory],
		FieldJobTitle:        row[FieldJobTitle],
	}

	positionID := strings.TrimSpace(row[FieldPositionID])
	if taskOrder, positionNumber, ok := splitPositionID(positionID); ok {
		fields[FieldPositionID] = positionID
		fields[FieldTaskOrderNumber] = taskOrder
		fields[FieldPositionNumber] = positionNumber
	} else {
		e.log.Warn("position id has no task order segment", zap.String("position_id", positionID))
		fields[FieldPositionID] = positionID
	}

	code := strings.TrimSpace(row[pdfDescriptionField])
	fields[FieldPositionDescription] = code

	raw := RawPosition{Fields: fields}
	if n, ok := descriptionNumber(code); ok {
		if desc, found := descriptions[n]; found {
			desc.Code = code
			raw.Description = &desc
		}
	}
	return raw
}

// harvestPdfDescriptions numbers Appendix B narratives in reading order. Each
// line that begins with "Position" opens the next one.
func harvestPdfDescriptions(pages []PdfPage) (map[int]Description, error) {
	start := -1
	for i, page := range pages {
		text := page.Text()
		if strings.Contains(text, appendixMarker) && strings.Contains(text, assignmentMarker) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, formatError(formatPDF, "Appendix B position descriptions not found", nil)
	}

	buckets := make(map[int][]string)
	current := 0
	for _, page := range pages[start:] {
		for _, line := range filterDescriptionLines(page.Lines) {
			if strings.HasPrefix(line, "Position") {
				current++
			}
			if current == 0 {
				continue
			}
			buckets[current] = append(buckets[current], line)
		}
	}

	descriptions := make(map[int]Description, len(buckets))
	for n, lines := range buckets {
		title, text := splitDescription(strings.Join(joinSentences(lines), " "))
		descriptions[n] = Description{Title: title, Text: text}
	}
	return descriptions, nil
}

// isPageNumberLine matches footer lines such as "Page 3 of 10".
func isPageNumberLine(text string) bool {
	return strings.Contains(text, "Page")
}

func filterDescriptionLines(lines []PdfLine) []string {
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		text := line.Text()
		if isPageNumberLine(text) {
			continue
		}
		text = strings.ReplaceAll(text, classificationBanner, "")
		text = strings.ReplaceAll(text, bulletGlyph, "")
		text = strings.Join(strings.Fields(text), " ")
		text = strings.TrimPrefix(text, "o ")
		if text == "" || text == appendixHeading {
			continue
		}
		filtered = append(filtered, text)
	}
	return filtered
}

// joinSentences glues wrapped lines back together; a sentence ends at the
// first line containing a period. A trailing fragment is kept.
func joinSentences(lines []string) []string {
	var sentences []string
	var current strings.Builder
	for _, line := range lines {
		current.WriteString(line)
		current.WriteByte(' ')
		if strings.Contains(line, ".") {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// splitDescription separates "Position 2: Data Analyst Overall Assignment
// Description: ..." into the title and the narrative.
func splitDescription(text string) (title, description string) {
	head := text
	if i := strings.Index(text, " "+assignmentSplitMarker+" "); i >= 0 {
		head = text[:i]
	}
	if i := strings.LastIndex(head, ":"); i >= 0 {
		head = head[i+1:]
	}
	title = strings.TrimSpace(head)

	description = text
	if i := strings.LastIndex(text, assignmentSplitMarker); i >= 0 {
		description = text[i+len(assignmentSplitMarker):]
	}
	return title, strings.TrimSpace(description)
}

func descriptionNumber(code string) (int, bool) {
	if n, err := strconv.Atoi(code); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(code, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}
