package extractors

import (
	"fmt"
	"strings"
)

// ExtractionFormatError means the document does not follow any template the
// extractors understand. Whatever was parsed before the failure is discarded.
type ExtractionFormatError struct {
	Format string
	Reason string
	Err    error
}

func (e *ExtractionFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Reason)
}

func (e *ExtractionFormatError) Unwrap() error {
	return e.Err
}

func formatError(format, reason string, err error) error {
	return &ExtractionFormatError{Format: format, Reason: reason, Err: err}
}

// RecordIncompleteError reports a row whose required fields were defaulted to
// "N/A". The record itself is still usable.
type RecordIncompleteError struct {
	Key     string
	Missing []string
}

func (e *RecordIncompleteError) Error() string {
	return fmt.Sprintf("record %s is missing %s", e.Key, strings.Join(e.Missing, ", "))
}
