package models

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a free-text candidate profile. AccountID is nil for floating
// profiles that no account owns.
type Candidate struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AccountID         *string   `gorm:"type:text;uniqueIndex" json:"account_id,omitempty"`
	Name              string    `gorm:"type:text;not null" json:"name"`
	Skills            string    `gorm:"type:text" json:"skills"`
	YearsOfExperience int       `gorm:"not null;default:0" json:"years_of_experience"`
	Education         string    `gorm:"type:text" json:"education"`
	ResumeReference   string    `gorm:"type:text" json:"resume_reference"`
	CreatedAt         time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt         time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// MatchText is the text compared against position descriptions.
func (c Candidate) MatchText() string {
	return c.Skills + ", " + c.Education
}
