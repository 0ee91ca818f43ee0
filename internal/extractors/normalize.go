package extractors

import (
	"strings"

	"alfredoptarigan/skill-scout/internal/models"
)

// Normalizer reconciles raw extractor output into canonical records. Every
// field of the result is populated; unrecoverable values become "N/A".
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Position builds a canonical position from a raw SOW row. The returned
// position is always usable; a *RecordIncompleteError lists the required
// fields that had to be defaulted.
func (n *Normalizer) Position(raw RawPosition) (models.Position, error) {
	var missing []string
	field := func(name string) string {
		v := strings.TrimSpace(raw.Fields[name])
		if v == "" {
			missing = append(missing, name)
			return models.NotAvailable
		}
		return v
	}

	p := models.Position{
		TaskOrderID:     field(FieldTaskOrderNumber),
		PositionID:      field(FieldPositionID),
		PositionNumber:  field(FieldPositionNumber),
		Location:        field(FieldLocation),
		SkillLevel:      models.ParseSkillLevel(field(FieldSkillLevel)),
		ServiceCategory: field(FieldServiceCategory),
		JobTitle:        field(FieldJobTitle),
	}

	if raw.Description != nil {
		p.DescriptionNumber = raw.Description.Code
		if strings.TrimSpace(p.DescriptionNumber) == "" {
			p.DescriptionNumber = raw.Fields[FieldPositionDescription]
		}
		p.DescriptionTitle = raw.Description.Title
		p.DescriptionText = raw.Description.Text
	} else {
		p.DescriptionNumber = field(FieldPositionDescription)
	}

	p = NormalizePosition(p)
	if len(missing) > 0 {
		return p, &RecordIncompleteError{
			Key:     p.PositionID + "/" + p.PositionNumber,
			Missing: missing,
		}
	}
	return p, nil
}

// NormalizePosition fills blanks with "N/A", collapses whitespace and maps the
// skill level onto its canonical bucket. It is idempotent.
func NormalizePosition(p models.Position) models.Position {
	p.TaskOrderID = orNotAvailable(p.TaskOrderID)
	p.PositionID = orNotAvailable(p.PositionID)
	p.PositionNumber = orNotAvailable(p.PositionNumber)
	p.Location = orNotAvailable(p.Location)
	p.DescriptionNumber = orNotAvailable(p.DescriptionNumber)
	p.DescriptionTitle = orNotAvailable(p.DescriptionTitle)
	p.DescriptionText = orNotAvailable(p.DescriptionText)
	p.ServiceCategory = orNotAvailable(p.ServiceCategory)
	p.JobTitle = orNotAvailable(p.JobTitle)
	p.SkillLevel = models.ParseSkillLevel(string(p.SkillLevel))
	p.Status = normalizeState(p.Status)
	return p
}

// Status builds a canonical status row. Rows without a task order or position
// number come back with a *RecordIncompleteError.
func (n *Normalizer) Status(raw RawStatus) (models.PositionStatus, error) {
	s := NormalizeStatus(models.PositionStatus{
		TaskOrderID:       raw[StatusTaskOrder],
		PositionNumber:    raw[StatusPositionNumber],
		DescriptionNumber: raw[StatusDescription],
		PreviousNames:     raw[StatusPreviousNames],
		Project:           raw[StatusProject],
		StaffingStatus:    raw[StatusStaffing],
		LaborCategory:     raw[StatusLaborCategory],
		Level:             raw[StatusLevel],
		CLIN:              raw[StatusCLIN],
		Location:          raw[StatusLocation],
		ReleaseDate:       raw[StatusReleaseDate],
		State:             models.PositionState(strings.ToLower(strings.TrimSpace(raw[StatusOpenOrClosed]))),
	})

	var missing []string
	if s.TaskOrderID == models.NotAvailable {
		missing = append(missing, StatusTaskOrder)
	}
	if s.PositionNumber == models.NotAvailable {
		missing = append(missing, StatusPositionNumber)
	}
	if len(missing) > 0 {
		return s, &RecordIncompleteError{Key: s.TaskOrderID + "/" + s.PositionNumber, Missing: missing}
	}
	return s, nil
}

// NormalizeStatus is the status counterpart of NormalizePosition.
func NormalizeStatus(s models.PositionStatus) models.PositionStatus {
	s.TaskOrderID = orNotAvailable(s.TaskOrderID)
	s.PositionNumber = orNotAvailable(s.PositionNumber)
	s.DescriptionNumber = orNotAvailable(s.DescriptionNumber)
	s.PreviousNames = orNotAvailable(s.PreviousNames)
	s.Project = orNotAvailable(s.Project)
	s.StaffingStatus = orNotAvailable(s.StaffingStatus)
	s.LaborCategory = orNotAvailable(s.LaborCategory)
	s.Level = orNotAvailable(s.Level)
	s.CLIN = orNotAvailable(s.CLIN)
	s.Location = orNotAvailable(s.Location)
	s.ReleaseDate = orNotAvailable(s.ReleaseDate)
	s.State = normalizeState(s.State)
	return s
}

func normalizeState(state models.PositionState) models.PositionState {
	switch state {
	case models.StateOpen, models.StateClosed:
		return state
	default:
		return models.StateUnknown
	}
}

func orNotAvailable(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return models.NotAvailable
	}
	return s
}
