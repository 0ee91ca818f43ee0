package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/extractors"
	"alfredoptarigan/skill-scout/internal/models"
)

type ingestionFixture struct {
	table     *fakeStatusExtractor
	word      *fakePositionExtractor
	pdf       *fakePositionExtractor
	positions *fakePositionRepo
	statuses  *fakeStatusRepo
	documents *fakeDocumentRepo
	storage   StorageService
	service   IngestionService
}

func newIngestionFixture(t *testing.T, opts IngestionOptions) *ingestionFixture {
	t.Helper()

	f := &ingestionFixture{
		table:     &fakeStatusExtractor{},
		word:      &fakePositionExtractor{},
		pdf:       &fakePositionExtractor{},
		positions: &fakePositionRepo{},
		statuses:  &fakeStatusRepo{},
		documents: &fakeDocumentRepo{},
		storage:   NewStorageService(t.TempDir()),
	}
	f.service = NewIngestionService(f.table, f.word, f.pdf, f.positions, f.statuses, f.documents, f.storage, opts, zap.NewNop())
	return f
}

func samplePosition(id, number string) extractors.RawPosition {
	return extractors.RawPosition{
		Fields: map[string]string{
			extractors.FieldTaskOrderNumber:     "123",
			extractors.FieldPositionID:          id,
			extractors.FieldPositionNumber:      number,
			extractors.FieldLocation:            "WMA",
			extractors.FieldPositionDescription: "3",
			extractors.FieldSkillLevel:          "3 - Senior",
			extractors.FieldServiceCategory:     "Engineering",
			extractors.FieldJobTitle:            "Systems Engineer",
		},
		Description: &extractors.Description{Code: "3", Title: "Position 3: Systems Engineer", Text: "Designs systems."},
	}
}

func TestKindForFile(t *testing.T) {
	tests := map[string]models.DocumentKind{
		"nee.XLSX":    models.KindStatusReport,
		"sow.docx":    models.KindWordSOW,
		"legacy.doc":  models.KindWordSOW,
		"sow.pdf":     models.KindPdfSOW,
		"dir/sow.Pdf": models.KindPdfSOW,
	}
	for name, want := range tests {
		kind, err := KindForFile(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, kind, name)
	}

	_, err := KindForFile("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestIngest_PositionsCreatedThenUnchanged(t *testing.T) {
	f := newIngestionFixture(t, IngestionOptions{})
	f.word.rows = []extractors.RawPosition{samplePosition("PID-0123-045", "45"), samplePosition("PID-0123-046", "46")}

	report, err := f.service.Ingest(context.Background(), "sow.docx", strings.NewReader("docx bytes"))
	require.NoError(t, err)
	assert.Equal(t, models.KindWordSOW, report.Kind)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Created)
	assert.NotEmpty(t, report.StoredFile)
	assert.NotEmpty(t, report.DocumentID)
	require.Len(t, f.documents.documents, 1)

	_, err = os.Stat(f.storage.GetFilePath(report.StoredFile))
	assert.NoError(t, err)

	again, err := f.service.Ingest(context.Background(), "sow.docx", strings.NewReader("docx bytes"))
	require.NoError(t, err)
	assert.Equal(t, 2, again.Unchanged)
	assert.Empty(t, again.StoredFile)
	assert.Len(t, f.documents.documents, 1)
}

func TestIngest_PositionUpdatedAndIncomplete(t *testing.T) {
	f := newIngestionFixture(t, IngestionOptions{})
	f.pdf.rows = []extractors.RawPosition{samplePosition("PID-0123-045", "45")}
	_, err := f.service.Ingest(context.Background(), "sow.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)

	changed := samplePosition("PID-0123-045", "45")
	changed.Fields[extractors.FieldJobTitle] = "Lead Systems Engineer"
	partial := extractors.RawPosition{Fields: map[string]string{extractors.FieldPositionID: "PID-0123-050"}}
	f.pdf.rows = []extractors.RawPosition{changed, partial}

	report, err := f.service.Ingest(context.Background(), "sow.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Incomplete)

	require.Len(t, f.positions.positions, 2)
	assert.Equal(t, "Lead Systems Engineer", f.positions.positions[0].JobTitle)
	assert.Equal(t, models.NotAvailable, f.positions.positions[1].Location)
}

func TestIngest_CountsMissingDescriptions(t *testing.T) {
	f := newIngestionFixture(t, IngestionOptions{})
	described := samplePosition("PID-0123-045", "45")
	undescribed := samplePosition("PID-0123-046", "46")
	undescribed.Description = nil
	f.word.rows = []extractors.RawPosition{described, undescribed}

	report, err := f.service.Ingest(context.Background(), "sow.docx", strings.NewReader("docx"))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.MissingDescriptions)
	require.Len(t, f.positions.positions, 2)
	assert.Equal(t, models.NotAvailable, f.positions.positions[1].DescriptionText)
}

func TestIngest_StatusReport(t *testing.T) {
	f := newIngestionFixture(t, IngestionOptions{})
	f.table.rows = []extractors.RawStatus{
		{extractors.StatusTaskOrder: "1", extractors.StatusPositionNumber: "34", extractors.StatusOpenOrClosed: "open"},
		{extractors.StatusTaskOrder: "1", extractors.StatusPositionNumber: "35", extractors.StatusOpenOrClosed: "closed"},
		{extractors.StatusTaskOrder: "", extractors.StatusOpenOrClosed: "open"},
	}

	report, err := f.service.Ingest(context.Background(), "nee.xlsx", strings.NewReader("xlsx"))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Incomplete)
	require.Len(t, f.statuses.statuses, 2)
	assert.Equal(t, models.StateOpen, f.statuses.statuses[0].State)
	assert.Equal(t, models.StateClosed, f.statuses.statuses[1].State)
}

func TestIngest_FormatErrorWritesNothing(t *testing.T) {
	f := newIngestionFixture(t, IngestionOptions{})
	f.pdf.err = &extractors.ExtractionFormatError{Format: "pdf", Reason: "Appendix B marker not found"}

	report, err := f.service.Ingest(context.Background(), "sow.pdf", strings.NewReader("pdf"))
	assert.Nil(t, report)

	var formatErr *extractors.ExtractionFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Empty(t, f.positions.positions)
	assert.Empty(t, f.documents.documents)
}

func TestIngest_RejectsBadUploads(t *testing.T) {
	f := newIngestionFixture(t, IngestionOptions{MaxFileSize: 4})

	_, err := f.service.Ingest(context.Background(), "resume.txt", strings.NewReader("text"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = f.service.Ingest(context.Background(), "sow.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = f.service.Ingest(context.Background(), "sow.pdf", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = f.service.Ingest(context.Background(), "sow.pdf", strings.NewReader("1234"))
	assert.NoError(t, err)
}

func TestIngest_AllRowsFailing(t *testing.T) {
	f := newIngestionFixture(t, IngestionOptions{})
	f.positions.failWith = errors.New("connection refused")
	f.word.rows = []extractors.RawPosition{samplePosition("PID-0123-045", "45")}

	_, err := f.service.Ingest(context.Background(), "sow.docx", strings.NewReader("docx"))
	assert.ErrorIs(t, err, ErrPersistence)
}
