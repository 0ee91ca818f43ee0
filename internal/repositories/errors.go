package repositories

import "errors"

// ErrNotFound is returned (wrapped) when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// UpsertOutcome reports what an upsert did. A duplicate identity key is
// resolved by updating in place and is never an error.
type UpsertOutcome int

const (
	OutcomeCreated UpsertOutcome = iota + 1
	OutcomeUpdated
	OutcomeUnchanged
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}
