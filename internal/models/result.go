package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// IngestionReport summarizes one upload. Rows that could not be persisted are
// counted in Failed; the root cause is logged. MissingDescriptions counts SOW
// positions stored without an Appendix B narrative.
type IngestionReport struct {
	Kind                DocumentKind `json:"kind"`
	OriginalName        string       `json:"original_name"`
	Total               int          `json:"total"`
	Created             int          `json:"created"`
	Updated             int          `json:"updated"`
	Unchanged           int          `json:"unchanged"`
	Incomplete          int          `json:"incomplete"`
	MissingDescriptions int          `json:"missing_descriptions"`
	Failed              int          `json:"failed"`
	DocumentID          string       `json:"document_id,omitempty"`
	StoredFile          string       `json:"stored_file,omitempty"`
}

// Changed reports whether the upload created or updated any record.
func (r *IngestionReport) Changed() bool {
	return r.Created+r.Updated > 0
}

type PositionMatch struct {
	Position Position `json:"position"`
	Score    float64  `json:"score"`
}

type CandidateMatch struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
}

type SaveCandidateRequest struct {
	AccountID         string `json:"account_id" form:"account_id"`
	Name              string `json:"name" form:"name" validate:"required,max=255"`
	Skills            string `json:"skills" form:"skills" validate:"required"`
	YearsOfExperience int    `json:"years_of_experience" form:"years_of_experience" validate:"gte=0,lte=80"`
	Education         string `json:"education" form:"education" validate:"max=255"`
	// OwnProfile mirrors the resume form's "this is my own resume" switch. When
	// false the profile is created floating even if AccountID is set.
	OwnProfile        bool   `json:"own_profile" form:"own_profile"`
}

type OpenPositionsQuery struct {
	TaskOrderID    string `query:"tonum" validate:"omitempty,max=100"`
	PositionNumber string `query:"posnum" validate:"omitempty,max=100"`
}

type MatchResponse[T any] struct {
	ID      string `json:"id"`
	Count   int    `json:"count"`
	Matches []T    `json:"matches"`
}

// Validate checks the request against its validate tags.
func (r SaveCandidateRequest) Validate() error {
	return validate.Struct(r)
}

func (q OpenPositionsQuery) Validate() error {
	return validate.Struct(q)
}
