package extractors

import (
	"context"
	"strings"
)

// Labels used by the SOW position tables.
const (
	FieldTaskOrderNumber     = "Task Order Number"
	FieldPositionID          = "Position ID"
	FieldPositionNumber      = "Position Number"
	FieldLocation            = "Location"
	FieldPositionDescription = "Position Description"
	FieldSkillLevel          = "Skill Level"
	FieldServiceCategory     = "Service Category"
	FieldJobTitle            = "Job Title"
)

// RequiredFields is the schema every extracted position is completed against.
var RequiredFields = []string{
	FieldTaskOrderNumber,
	FieldPositionID,
	FieldPositionNumber,
	FieldLocation,
	FieldPositionDescription,
	FieldSkillLevel,
	FieldServiceCategory,
	FieldJobTitle,
}

// Column names of the position status spreadsheet.
const (
	StatusTaskOrder      = "tonum"
	StatusDescription    = "pdnum"
	StatusPreviousNames  = "previous_names"
	StatusProject        = "project"
	StatusStaffing       = "status"
	StatusLaborCategory  = "labor_cat"
	StatusLevel          = "level"
	StatusCLIN           = "clin"
	StatusLocation       = "location"
	StatusReleaseDate    = "release_date"
	StatusPositionNumber = "posnum"
	StatusOpenOrClosed   = "open_or_closed"
)

var statusHeaders = []string{
	StatusTaskOrder,
	StatusDescription,
	StatusPreviousNames,
	StatusProject,
	StatusStaffing,
	StatusLaborCategory,
	StatusLevel,
	StatusCLIN,
	StatusLocation,
	StatusReleaseDate,
}

// Description is a narrative position description resolved from an appendix.
type Description struct {
	Code  string
	Title string
	Text  string
}

// RawPosition is one table row as found in a SOW, before normalization.
// Description is nil when the row's description pointer did not resolve.
type RawPosition struct {
	Fields      map[string]string
	Description *Description
}

// RawStatus is one row of the status spreadsheet keyed by column name.
type RawStatus map[string]string

// PositionExtractor turns a SOW document into raw position rows.
type PositionExtractor interface {
	ExtractBytes(ctx context.Context, data []byte) ([]RawPosition, error)
}

// splitPositionID derives the task order and position number from an id such
// as "PID-0123-045". Leading zeros are dropped from both parts.
func splitPositionID(id string) (taskOrder, positionNumber string, ok bool) {
	parts := strings.Split(strings.TrimSpace(id), "-")
	if len(parts) < 2 {
		return "", "", false
	}

	taskOrder = strings.TrimLeft(strings.TrimSpace(parts[1]), "0")
	positionNumber = strings.TrimLeft(strings.TrimSpace(parts[len(parts)-1]), "0")
	return taskOrder, positionNumber, true
}
