package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/extractors"
	"alfredoptarigan/skill-scout/internal/models"
	"alfredoptarigan/skill-scout/internal/repositories"
)

var kindsByExtension = map[string]models.DocumentKind{
	".xlsx": models.KindStatusReport,
	".doc":  models.KindWordSOW,
	".docx": models.KindWordSOW,
	".pdf":  models.KindPdfSOW,
}

// KindForFile decides how an upload is processed from its extension alone.
func KindForFile(filename string) (models.DocumentKind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	kind, ok := kindsByExtension[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	return kind, nil
}

// StatusExtractor turns a status spreadsheet into raw status rows.
type StatusExtractor interface {
	ExtractBytes(ctx context.Context, data []byte) ([]extractors.RawStatus, error)
}

type IngestionOptions struct {
	MaxFileSize       int64
	ExtractionTimeout time.Duration
}

type IngestionService interface {
	Ingest(ctx context.Context, filename string, r io.Reader) (*models.IngestionReport, error)
}

type ingestionService struct {
	table      StatusExtractor
	word       extractors.PositionExtractor
	pdf        extractors.PositionExtractor
	normalizer *extractors.Normalizer
	positions  repositories.PositionRepository
	statuses   repositories.StatusRepository
	documents  repositories.DocumentRepository
	storage    StorageService
	opts       IngestionOptions
	log        *zap.Logger
}

func NewIngestionService(
	table StatusExtractor,
	word extractors.PositionExtractor,
	pdf extractors.PositionExtractor,
	positions repositories.PositionRepository,
	statuses repositories.StatusRepository,
	documents repositories.DocumentRepository,
	storage StorageService,
	opts IngestionOptions,
	log *zap.Logger,
) IngestionService {
	return &ingestionService{
		table:      table,
		word:       word,
		pdf:        pdf,
		normalizer: extractors.NewNormalizer(),
		positions:  positions,
		statuses:   statuses,
		documents:  documents,
		storage:    storage,
		opts:       opts,
		log:        log,
	}
}

// Ingest implements IngestionService. The file is parsed completely before
// anything is written; a format error leaves the store untouched. The
// original bytes are kept only when at least one record was created or
// updated.
func (s *ingestionService) Ingest(ctx context.Context, filename string, r io.Reader) (*models.IngestionReport, error) {
	kind, err := KindForFile(filename)
	if err != nil {
		return nil, err
	}

	data, err := s.read(r)
	if err != nil {
		return nil, err
	}

	report := &models.IngestionReport{Kind: kind, OriginalName: filepath.Base(filename)}
	log := s.log.With(zap.String("file", report.OriginalName), zap.String("kind", string(kind)))

	switch kind {
	case models.KindStatusReport:
		err = s.ingestStatuses(ctx, data, report, log)
	case models.KindWordSOW:
		err = s.ingestPositions(ctx, s.word, data, report, log)
	case models.KindPdfSOW:
		err = s.ingestPositions(ctx, s.pdf, data, report, log)
	}
	if err != nil {
		log.Error("upload unsuccessful", zap.Error(err))
		return nil, err
	}

	if report.Total > 0 && report.Failed == report.Total {
		return nil, fmt.Errorf("%w: all %d records failed to store", ErrPersistence, report.Total)
	}

	if report.Changed() {
		s.keepOriginal(ctx, kind, filename, data, report, log)
	}

	log.Info("upload processed",
		zap.Int("total", report.Total),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("incomplete", report.Incomplete),
		zap.Int("failed", report.Failed))

	return report, nil
}

func (s *ingestionService) read(r io.Reader) ([]byte, error) {
	if s.opts.MaxFileSize > 0 {
		r = io.LimitReader(r, s.opts.MaxFileSize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.opts.MaxFileSize)
	}

	return data, nil
}

func (s *ingestionService) extractionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.ExtractionTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.ExtractionTimeout)
}

func (s *ingestionService) ingestStatuses(ctx context.Context, data []byte, report *models.IngestionReport, log *zap.Logger) error {
	extractCtx, cancel := s.extractionContext(ctx)
	rows, err := s.table.ExtractBytes(extractCtx, data)
	cancel()
	if err != nil {
		return err
	}

	report.Total = len(rows)
	for _, row := range rows {
		status, err := s.normalizer.Status(row)
		if err != nil {
			// Without tonum/posnum the row cannot be keyed.
			report.Incomplete++
			log.Warn("status row skipped", zap.Error(err))
			continue
		}

		outcome, err := s.statuses.Upsert(ctx, &status)
		if err != nil {
			report.Failed++
			log.Error("failed to store status",
				zap.String("task_order", status.TaskOrderID),
				zap.String("position_number", status.PositionNumber),
				zap.Error(err))
			continue
		}
		count(report, outcome)
	}

	return nil
}

func (s *ingestionService) ingestPositions(ctx context.Context, extractor extractors.PositionExtractor, data []byte, report *models.IngestionReport, log *zap.Logger) error {
	extractCtx, cancel := s.extractionContext(ctx)
	rows, err := extractor.ExtractBytes(extractCtx, data)
	cancel()
	if err != nil {
		return err
	}

	report.Total = len(rows)
	for _, row := range rows {
		if row.Description == nil {
			report.MissingDescriptions++
		}
		position, err := s.normalizer.Position(row)
		var incomplete *extractors.RecordIncompleteError
		if errors.As(err, &incomplete) {
			report.Incomplete++
			log.Debug("position defaulted to N/A", zap.String("position", incomplete.Key), zap.Strings("missing", incomplete.Missing))
		}

		outcome, err := s.positions.Upsert(ctx, &position)
		if err != nil {
			report.Failed++
			log.Error("failed to store position", zap.String("position_id", position.PositionID), zap.Error(err))
			continue
		}
		count(report, outcome)
	}

	if report.MissingDescriptions > 0 {
		log.Warn("positions stored without a description",
			zap.Int("missing_descriptions", report.MissingDescriptions),
			zap.Int("total", report.Total))
	}
	return nil
}

func (s *ingestionService) keepOriginal(ctx context.Context, kind models.DocumentKind, filename string, data []byte, report *models.IngestionReport, log *zap.Logger) {
	stored, path, err := s.storage.Save(string(kind), filename, bytes.NewReader(data))
	if err != nil {
		log.Warn("failed to keep uploaded file", zap.Error(err))
		return
	}
	report.StoredFile = stored

	doc := &models.UploadedDocument{
		Filename:         stored,
		OriginalFileName: report.OriginalName,
		Kind:             kind,
		FilePath:         path,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		log.Warn("failed to record uploaded file", zap.String("stored_file", stored), zap.Error(err))
		return
	}
	report.DocumentID = doc.ID.String()
}

func count(report *models.IngestionReport, outcome repositories.UpsertOutcome) {
	switch outcome {
	case repositories.OutcomeCreated:
		report.Created++
	case repositories.OutcomeUpdated:
		report.Updated++
	default:
		report.Unchanged++
	}
}
