package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildDocx(t *testing.T, body ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Join(body, "") +
		`<w:sectPr/></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func para(text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="Normal"/></w:pPr><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

func cell(text string) string {
	return `<w:tc><w:tcPr><w:tcW w:w="1000"/></w:tcPr>` + para(text) + `</w:tc>`
}

func table(rows ...[]string) string {
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr/><w:tblGrid><w:gridCol/></w:tblGrid>`)
	for _, row := range rows {
		b.WriteString(`<w:tr>`)
		for _, text := range row {
			b.WriteString(cell(text))
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
	return b.String()
}

func sowDocx(t *testing.T) []byte {
	return buildDocx(t,
		para("Statement of Work"),
		table(
			[]string{"*Position ID*", "Location", "Position Description", "Skill Level", "Service Category", "Job Title"},
			[]string{"PID-0123-045", "WMA", "3a", "2 - Mid (6+ to 12)", "Engineering", "Systems Engineer"},
			[]string{"PID-0123-046", "Remote", "4", "4 - Expert", "Analytics", "Data Analyst"},
			[]string{"", "", "", "", "", ""},
		),
		table([]string{"Deliverable", "Due"}, []string{"Report", "Monthly"}),
		para("Appendix A Key:"),
		para("Appendix B:   Position Descriptions"),
		para("Position 3a: Systems Engineer"),
		para("Designs   and integrates"),
		para(""),
		para("mission systems."),
		para("Position 4: Data Analyst"),
		para("Analyzes program data."),
	)
}

func TestWordSOWExtractor_ExtractBytes(t *testing.T) {
	got, err := NewWordSOWExtractor(zap.NewNop()).ExtractBytes(context.Background(), sowDocx(t))
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "PID-0123-045", first.Fields[FieldPositionID])
	assert.Equal(t, "123", first.Fields[FieldTaskOrderNumber])
	assert.Equal(t, "45", first.Fields[FieldPositionNumber])
	assert.Equal(t, "WMA", first.Fields[FieldLocation])
	require.NotNil(t, first.Description)
	assert.Equal(t, Description{
		Code:  "3a",
		Title: "Position 3a: Systems Engineer",
		Text:  "Designs and integrates mission systems.",
	}, *first.Description)

	second := got[1]
	assert.Equal(t, "46", second.Fields[FieldPositionNumber])
	require.NotNil(t, second.Description)
	assert.Equal(t, "Position 4: Data Analyst", second.Description.Title)
	assert.Equal(t, "Analyzes program data.", second.Description.Text)
}

func TestWordSOWExtractor_ExplicitPositionNumberWins(t *testing.T) {
	doc := &WordDocument{Tables: []WordTable{{Rows: [][]string{
		{"Position ID", "Position Number"},
		{"PID-0123-045", "007"},
	}}}}

	got, err := NewWordSOWExtractor(zap.NewNop()).Extract(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].Fields[FieldPositionNumber])
	assert.Equal(t, "123", got[0].Fields[FieldTaskOrderNumber])
	assert.Nil(t, got[0].Description)
}

func TestWordSOWExtractor_NoPositionTable(t *testing.T) {
	data := buildDocx(t, para("Appendix A Key:"), table([]string{"Deliverable"}, []string{"Report"}))

	_, err := NewWordSOWExtractor(zap.NewNop()).ExtractBytes(context.Background(), data)

	var formatErr *ExtractionFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "docx", formatErr.Format)
}

func TestWordSOWExtractor_NotADocx(t *testing.T) {
	_, err := NewWordSOWExtractor(zap.NewNop()).ExtractBytes(context.Background(), []byte{0xD0, 0xCF, 0x11, 0xE0})

	var formatErr *ExtractionFormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestHarvestWordDescriptions_RequiresAppendixAKeyFirst(t *testing.T) {
	buckets, found := harvestWordDescriptions([]string{
		"Appendix B: Position Descriptions",
		"Position 1: Engineer",
		"Builds things.",
	})
	assert.False(t, found)
	assert.Empty(t, buckets)
}

func TestMatchDescription(t *testing.T) {
	buckets := []*descriptionBucket{
		{heading: "Position 1: Engineer"},
		{heading: "Position 10: Analyst"},
		{heading: "Positions 3a: Testers"},
	}

	assert.Equal(t, "Position 1: Engineer", matchDescription("1", buckets).heading)
	assert.Equal(t, "Position 10: Analyst", matchDescription("10", buckets).heading)
	assert.Equal(t, "Positions 3a: Testers", matchDescription("3a", buckets).heading)
	assert.Equal(t, "Positions 3a: Testers", matchDescription("3", buckets).heading)
	assert.Nil(t, matchDescription("", buckets))
	assert.Nil(t, matchDescription("7", buckets))
}

func TestParseWordDocument_MergedCells(t *testing.T) {
	data := buildDocx(t,
		`<w:tbl><w:tr>`+
			`<w:tc><w:tcPr><w:gridSpan w:val="2"/><w:vMerge w:val="restart"/></w:tcPr>`+para("Wide")+`</w:tc>`+
			cell("Right")+
			`</w:tr><w:tr>`+
			`<w:tc><w:tcPr><w:gridSpan w:val="2"/><w:vMerge/></w:tcPr><w:p/></w:tc>`+
			cell("Below")+
			`</w:tr></w:tbl>`,
		`<w:p><w:r><w:t>Tab</w:t><w:tab/><w:t>bed</w:t><w:br/><w:t>line</w:t></w:r></w:p>`,
	)

	doc, err := ParseWordDocument(data)
	require.NoError(t, err)
	require.Len(t, doc.Tables, 1)
	assert.Equal(t, [][]string{
		{"Wide", "Wide", "Right"},
		{"Wide", "Wide", "Below"},
	}, doc.Tables[0].Rows)
	assert.Equal(t, []string{"Tab\tbed\nline"}, doc.Paragraphs)
}
