package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/models"
	"alfredoptarigan/skill-scout/internal/repositories"
)

var resumeExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true, ".txt": true}

// ResumeFile is an optional resume uploaded with a candidate profile.
type ResumeFile struct {
	Name   string
	Reader io.Reader
}

type CandidateService interface {
	Save(ctx context.Context, req models.SaveCandidateRequest, resume *ResumeFile) (*models.Candidate, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
}

type candidateService struct {
	repo    repositories.CandidateRepository
	storage StorageService
	log     *zap.Logger
}

func NewCandidateService(repo repositories.CandidateRepository, storage StorageService, log *zap.Logger) CandidateService {
	return &candidateService{repo: repo, storage: storage, log: log}
}

// Save implements CandidateService. An account owns at most one profile: with
// OwnProfile set the account's profile is updated in place, otherwise a new
// floating profile is created. Accounts without a profile get one attached.
func (s *candidateService) Save(ctx context.Context, req models.SaveCandidateRequest, resume *ResumeFile) (*models.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	accountID := strings.TrimSpace(req.AccountID)

	var existing *models.Candidate
	if accountID != "" {
		found, err := s.repo.FindByAccount(ctx, accountID)
		switch {
		case err == nil:
			existing = found
		case errors.Is(err, repositories.ErrNotFound):
		default:
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}

	reference := ""
	if resume != nil {
		stored, err := s.storeResume(resume)
		if err != nil {
			return nil, err
		}
		reference = stored
	}

	if existing != nil && req.OwnProfile {
		existing.Name = strings.TrimSpace(req.Name)
		existing.Skills = strings.TrimSpace(req.Skills)
		existing.YearsOfExperience = req.YearsOfExperience
		existing.Education = strings.TrimSpace(req.Education)
		if reference != "" {
			existing.ResumeReference = reference
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		s.log.Info("candidate updated", zap.String("candidate_id", existing.ID.String()))
		return existing, nil
	}

	candidate := &models.Candidate{
		Name:              strings.TrimSpace(req.Name),
		Skills:            strings.TrimSpace(req.Skills),
		YearsOfExperience: req.YearsOfExperience,
		Education:         strings.TrimSpace(req.Education),
		ResumeReference:   reference,
	}
	if accountID != "" && existing == nil {
		candidate.AccountID = &accountID
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.log.Info("candidate created",
		zap.String("candidate_id", candidate.ID.String()),
		zap.Bool("floating", candidate.AccountID == nil))
	return candidate, nil
}

// Get implements CandidateService.
func (s *candidateService) Get(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *candidateService) storeResume(resume *ResumeFile) (string, error) {
	ext := strings.ToLower(filepath.Ext(resume.Name))
	if !resumeExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}

	stored, _, err := s.storage.Save(string(models.KindResume), resume.Name, resume.Reader)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return stored, nil
}
