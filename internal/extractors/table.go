package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	markerColumn = 3
	formatXLSX   = "xlsx"
)

var releaseDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"January 2, 2006",
	"Jan 2, 2006",
}

// TableExtractor reads the open/closed position status spreadsheet. The sheet
// has no header row; column 3 carries the "open positions" and
// "closed positions" section markers.
type TableExtractor struct {
	log *zap.Logger
}

func NewTableExtractor(log *zap.Logger) *TableExtractor {
	return &TableExtractor{log: log}
}

func (e *TableExtractor) ExtractFile(ctx context.Context, path string) ([]RawStatus, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, formatError(formatXLSX, "cannot open spreadsheet", err)
	}
	defer f.Close()

	return e.extract(ctx, f)
}

func (e *TableExtractor) ExtractBytes(ctx context.Context, data []byte) ([]RawStatus, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, formatError(formatXLSX, "cannot open spreadsheet", err)
	}
	defer f.Close()

	return e.extract(ctx, f)
}

func (e *TableExtractor) extract(ctx context.Context, f *excelize.File) ([]RawStatus, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, formatError(formatXLSX, "workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, formatError(formatXLSX, fmt.Sprintf("cannot read sheet %q", sheets[0]), err)
	}

	return e.ExtractRows(ctx, rows)
}

// ExtractRows classifies data rows by the last section marker seen. Open rows
// come first in the result, followed by closed rows.
func (e *TableExtractor) ExtractRows(ctx context.Context, rows [][]string) ([]RawStatus, error) {
	var open, closed []RawStatus
	inOpen := false

	for i, row := range rows {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("spreadsheet extraction interrupted: %w", err)
			}
		}
		if blankRow(row) {
			continue
		}

		marker := cellAt(row, markerColumn)
		lower := strings.ToLower(marker)
		switch {
		case strings.Contains(lower, "open positions"):
			inOpen = true
		case strings.Contains(lower, "closed positions"):
			inOpen = false
		case inOpen && !strings.Contains(lower, "project"):
			open = append(open, zipStatusRow(row, "open"))
		case !inOpen && strings.TrimSpace(marker) != "":
			closed = append(closed, zipStatusRow(row, "closed"))
		}
	}

	statuses := make([]RawStatus, 0, len(open)+len(closed))
	statuses = append(statuses, open...)
	statuses = append(statuses, closed...)
	for _, s := range statuses {
		splitTaskOrder(s)
		s[StatusReleaseDate] = isoDate(s[StatusReleaseDate])
	}

	e.log.Debug("spreadsheet rows classified",
		zap.Int("open", len(open)),
		zap.Int("closed", len(closed)))

	return statuses, nil
}

func zipStatusRow(row []string, state string) RawStatus {
	status := make(RawStatus, len(statusHeaders)+2)
	for i, header := range statusHeaders {
		status[header] = strings.TrimSpace(cellAt(row, i))
	}
	status[StatusOpenOrClosed] = state
	return status
}

// splitTaskOrder separates "1 / 34" into task order "1" and position number
// "34". Footnote text after the position number is dropped.
func splitTaskOrder(s RawStatus) {
	parts := strings.SplitN(s[StatusTaskOrder], " / ", 2)
	s[StatusTaskOrder] = strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		s[StatusPositionNumber] = ""
		return
	}

	posnum := strings.TrimSpace(parts[1])
	posnum = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(posnum)
	if i := strings.Index(posnum, " "); i >= 0 {
		posnum = posnum[:i]
	}
	s[StatusPositionNumber] = posnum
}

// isoDate renders a release date as YYYY-MM-DD. Unrecognized values are kept.
func isoDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("2006-01-02")
		}
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
