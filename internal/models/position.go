package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotAvailable fills every position field that could not be recovered from a document.
const NotAvailable = "N/A"

type SkillLevel string

const (
	SkillLevelJunior  SkillLevel = "1 - Junior (0 to 6 years)"
	SkillLevelMid     SkillLevel = "2 - Mid (6 to 12 years)"
	SkillLevelSenior  SkillLevel = "3 - Senior (12 to 18 years)"
	SkillLevelExpert  SkillLevel = "4 - Expert (18 or more years)"
	SkillLevelUnknown SkillLevel = NotAvailable
)

var SkillLevels = []SkillLevel{SkillLevelJunior, SkillLevelMid, SkillLevelSenior, SkillLevelExpert}

// ParseSkillLevel buckets a free-form level ("2 - Mid (6+ to 12)", "3", ...) by its
// leading digit. Anything else is SkillLevelUnknown.
func ParseSkillLevel(raw string) SkillLevel {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SkillLevelUnknown
	}
	for _, level := range SkillLevels {
		if raw[0] == level[0] {
			return level
		}
	}
	return SkillLevelUnknown
}

type PositionState string

const (
	StateOpen    PositionState = "open"
	StateClosed  PositionState = "closed"
	StateUnknown PositionState = NotAvailable
)

// Position is a staffing position harvested from a statement of work.
// (PositionID, PositionNumber) identifies it for upserts.
type Position struct {
	ID                uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TaskOrderID       string        `gorm:"type:text;not null;index:idx_positions_task_order" json:"task_order_id"`
	PositionID        string        `gorm:"type:text;not null;uniqueIndex:idx_positions_identity" json:"position_id"`
	PositionNumber    string        `gorm:"type:text;not null;uniqueIndex:idx_positions_identity;index:idx_positions_task_order" json:"position_number"`
	Location          string        `gorm:"type:text" json:"location"`
	DescriptionNumber string        `gorm:"type:text" json:"description_number"`
	DescriptionTitle  string        `gorm:"type:text" json:"description_title"`
	DescriptionText   string        `gorm:"type:text" json:"description_text"`
	SkillLevel        SkillLevel    `gorm:"type:text" json:"skill_level"`
	ServiceCategory   string        `gorm:"type:text" json:"service_category"`
	JobTitle          string        `gorm:"type:text" json:"job_title"`
	Status            PositionState `gorm:"-" json:"status"`
	CreatedAt         time.Time     `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// Key returns the (task order, position number) pair used for status lookups.
func (p Position) Key() PositionKey {
	return PositionKey{TaskOrderID: p.TaskOrderID, PositionNumber: p.PositionNumber}
}

// SameContent reports whether two positions carry identical document content.
func (p Position) SameContent(o Position) bool {
	return p.TaskOrderID == o.TaskOrderID &&
		p.PositionID == o.PositionID &&
		p.PositionNumber == o.PositionNumber &&
		p.Location == o.Location &&
		p.DescriptionNumber == o.DescriptionNumber &&
		p.DescriptionTitle == o.DescriptionTitle &&
		p.DescriptionText == o.DescriptionText &&
		p.SkillLevel == o.SkillLevel &&
		p.ServiceCategory == o.ServiceCategory &&
		p.JobTitle == o.JobTitle
}

// DescriptionPreview returns the first 100 runes of the description.
func (p Position) DescriptionPreview() string {
	const previewLength = 100
	runes := []rune(p.DescriptionText)
	if len(runes) > previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return p.DescriptionText
}

type PositionKey struct {
	TaskOrderID    string
	PositionNumber string
}
