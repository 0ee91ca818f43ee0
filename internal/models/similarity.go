package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// SimilarityScore memoizes one candidate/position similarity computation.
// Rows are immutable once written. The unique index runs over content hashes
// because the texts themselves are unbounded.
type SimilarityScore struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateName     string    `gorm:"type:text;not null;uniqueIndex:idx_similarity_key" json:"candidate_name"`
	CandidateInfo     string    `gorm:"type:text;not null" json:"candidate_info"`
	PositionInfo      string    `gorm:"type:text;not null" json:"position_info"`
	CandidateInfoHash string    `gorm:"type:char(64);not null;uniqueIndex:idx_similarity_key" json:"-"`
	PositionInfoHash  string    `gorm:"type:char(64);not null;uniqueIndex:idx_similarity_key" json:"-"`
	Score             float64   `gorm:"not null" json:"score"`
	CreatedAt         time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (SimilarityScore) TableName() string {
	return "similarity_scores"
}

// SimilarityKey is the exact-match memo key.
type SimilarityKey struct {
	CandidateName string
	CandidateInfo string
	PositionInfo  string
}

func NewSimilarityKey(candidate Candidate, position Position) SimilarityKey {
	return SimilarityKey{
		CandidateName: candidate.Name,
		CandidateInfo: candidate.MatchText(),
		PositionInfo:  position.DescriptionText,
	}
}

func (k SimilarityKey) CandidateInfoHash() string {
	return hashText(k.CandidateInfo)
}

func (k SimilarityKey) PositionInfoHash() string {
	return hashText(k.PositionInfo)
}

// String is a compact form of the key, safe to use as a map or singleflight key.
func (k SimilarityKey) String() string {
	return k.CandidateName + "\x00" + k.CandidateInfoHash() + "\x00" + k.PositionInfoHash()
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
