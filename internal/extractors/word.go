package extractors

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

var positionHeading = regexp.MustCompile(`^Positions? [0-9]+[a-z]*:`)

type descriptionBucket struct {
	heading string
	text    strings.Builder
}

// WordSOWExtractor reads position tables and Appendix B narratives from a
// Word statement of work.
type WordSOWExtractor struct {
	log *zap.Logger
}

func NewWordSOWExtractor(log *zap.Logger) *WordSOWExtractor {
	return &WordSOWExtractor{log: log}
}

func (e *WordSOWExtractor) ExtractFile(ctx context.Context, path string) ([]RawPosition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.ExtractBytes(ctx, data)
}

// ExtractBytes implements PositionExtractor.
func (e *WordSOWExtractor) ExtractBytes(ctx context.Context, data []byte) ([]RawPosition, error) {
	doc, err := ParseWordDocument(data)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, doc)
}

func (e *WordSOWExtractor) Extract(ctx context.Context, doc *WordDocument) ([]RawPosition, error) {
	buckets, found := harvestWordDescriptions(doc.Paragraphs)
	if !found {
		e.log.Warn("Appendix B position descriptions not found; descriptions will be N/A")
	}

	tables := positionTables(doc.Tables)
	if len(tables) == 0 {
		return nil, formatError(formatDOCX, "no table with a Position ID column", nil)
	}

	var positions []RawPosition
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("word extraction interrupted: %w", err)
		}
		if len(table.Rows) == 0 {
			continue
		}

		labels := make([]string, len(table.Rows[0]))
		for i, cell := range table.Rows[0] {
			labels[i] = strings.Trim(strings.Trim(cell, "*"), " \n#")
		}

		for _, row := range table.Rows[1:] {
			position, ok := e.buildRow(labels, row, buckets)
			if ok {
				positions = append(positions, position)
			}
		}
	}

	e.log.Debug("word SOW parsed",
		zap.Int("tables", len(tables)),
		zap.Int("descriptions", len(buckets)),
		zap.Int("positions", len(positions)))

	return positions, nil
}

func (e *WordSOWExtractor) buildRow(labels, row []string, buckets []*descriptionBucket) (RawPosition, bool) {
	fields := make(map[string]string, len(labels)+1)
	for i, label := range labels {
		if i >= len(row) {
			break
		}
		fields[label] = strings.Trim(strings.TrimLeft(row[i], "0"), "\n")
	}

	positionID := strings.TrimSpace(fields[FieldPositionID])
	if positionID == "" {
		e.log.Debug("skipping table row without a Position ID", zap.Strings("row", row))
		return RawPosition{}, false
	}

	taskOrder, positionNumber, ok := splitPositionID(positionID)
	if ok {
		fields[FieldTaskOrderNumber] = taskOrder
		if strings.TrimSpace(fields[FieldPositionNumber]) == "" {
			fields[FieldPositionNumber] = positionNumber
		}
	} else {
		e.log.Warn("position id has no task order segment", zap.String("position_id", positionID))
	}

	raw := RawPosition{Fields: fields}
	code := strings.TrimSpace(fields[FieldPositionDescription])
	if bucket := matchDescription(code, buckets); bucket != nil {
		raw.Description = &Description{
			Code:  code,
			Title: bucket.heading,
			Text:  strings.TrimSpace(bucket.text.String()),
		}
	}
	return raw, true
}

// harvestWordDescriptions collects Appendix B narratives keyed by their
// "Position N:" heading. The bool reports whether Appendix B was found after
// the Appendix A key.
func harvestWordDescriptions(paragraphs []string) ([]*descriptionBucket, bool) {
	var pastKey, inAppendix bool
	var buckets []*descriptionBucket

	for _, paragraph := range paragraphs {
		squashed := strings.ToLower(strings.Join(strings.Fields(paragraph), ""))
		if strings.Contains(squashed, "appendixakey:") {
			pastKey = true
		}
		if pastKey && strings.Contains(squashed, "appendixb:positiondescriptions") {
			inAppendix = true
		}
		if !inAppendix {
			continue
		}

		collapsed := strings.Join(strings.Fields(paragraph), " ")
		if positionHeading.MatchString(paragraph) {
			buckets = append(buckets, &descriptionBucket{heading: collapsed})
			continue
		}
		if len(buckets) == 0 || collapsed == "" {
			continue
		}
		current := buckets[len(buckets)-1]
		current.text.WriteString(collapsed)
		current.text.WriteByte(' ')
	}

	return buckets, inAppendix
}

// positionTables returns the tables holding a cell that reads "Position ID",
// ignoring surrounding asterisks.
func positionTables(tables []WordTable) []WordTable {
	var matched []WordTable
	for _, table := range tables {
		if tableHasPositionID(table) {
			matched = append(matched, table)
		}
	}
	return matched
}

func tableHasPositionID(table WordTable) bool {
	for _, row := range table.Rows {
		for _, cell := range row {
			if strings.Trim(cell, "*") == FieldPositionID {
				return true
			}
		}
	}
	return false
}

// matchDescription resolves a description code such as "3a" against bucket
// headings. A whole-token hit wins; otherwise the last plain substring hit is
// used.
func matchDescription(code string, buckets []*descriptionBucket) *descriptionBucket {
	if code == "" {
		return nil
	}

	var loose *descriptionBucket
	for _, bucket := range buckets {
		if !strings.Contains(bucket.heading, code) {
			continue
		}
		if containsToken(bucket.heading, code) {
			return bucket
		}
		loose = bucket
	}
	return loose
}

func containsToken(s, token string) bool {
	from := 0
	for {
		i := strings.Index(s[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(s) || !isWordRune(after)) {
			return true
		}
		from = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
