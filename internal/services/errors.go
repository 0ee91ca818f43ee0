package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrEmptyFile       = errors.New("file is empty")
	ErrPersistence     = errors.New("persistence failure")
	ErrInvalidRequest  = errors.New("invalid request")
)

// SimilarityComputeError aborts a single score computation. It is never
// replaced by a default score.
type SimilarityComputeError struct {
	Model string
	Err   error
}

func (e *SimilarityComputeError) Error() string {
	return fmt.Sprintf("similarity computation with %s failed: %v", e.Model, e.Err)
}

func (e *SimilarityComputeError) Unwrap() error {
	return e.Err
}
