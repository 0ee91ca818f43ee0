package models

import (
	"time"

	"github.com/google/uuid"
)

// PositionStatus is one row of the open/closed position report spreadsheet.
type PositionStatus struct {
	ID                uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TaskOrderID       string        `gorm:"type:text;not null;uniqueIndex:idx_position_statuses_key" json:"task_order_id"`
	PositionNumber    string        `gorm:"type:text;not null;uniqueIndex:idx_position_statuses_key" json:"position_number"`
	DescriptionNumber string        `gorm:"type:text" json:"description_number"`
	PreviousNames     string        `gorm:"type:text" json:"previous_names"`
	Project           string        `gorm:"type:text" json:"project"`
	StaffingStatus    string        `gorm:"type:text" json:"staffing_status"`
	LaborCategory     string        `gorm:"type:text" json:"labor_category"`
	Level             string        `gorm:"type:text" json:"level"`
	CLIN              string        `gorm:"column:clin;type:text" json:"clin"`
	Location          string        `gorm:"type:text" json:"location"`
	ReleaseDate       string        `gorm:"type:text" json:"release_date"`
	State             PositionState `gorm:"type:text;not null;index" json:"state"`
	CreatedAt         time.Time     `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (PositionStatus) TableName() string {
	return "position_statuses"
}

func (s PositionStatus) Key() PositionKey {
	return PositionKey{TaskOrderID: s.TaskOrderID, PositionNumber: s.PositionNumber}
}

func (s PositionStatus) SameContent(o PositionStatus) bool {
	return s.TaskOrderID == o.TaskOrderID &&
		s.PositionNumber == o.PositionNumber &&
		s.DescriptionNumber == o.DescriptionNumber &&
		s.PreviousNames == o.PreviousNames &&
		s.Project == o.Project &&
		s.StaffingStatus == o.StaffingStatus &&
		s.LaborCategory == o.LaborCategory &&
		s.Level == o.Level &&
		s.CLIN == o.CLIN &&
		s.Location == o.Location &&
		s.ReleaseDate == o.ReleaseDate &&
		s.State == o.State
}
