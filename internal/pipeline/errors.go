package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoExtractableData is returned when a document has neither a usable
// text layer nor a decodable AFIP QR code. There is nothing to build a
// record from, so no record is produced.
var ErrNoExtractableData = errors.New("no text layer and no QR code")

// ProcessError wraps document-level processing failures with the operation
// that failed. Field-level misses never surface as errors; only a document
// that cannot be processed at all produces one.
type ProcessError struct {
	// Op is the operation that failed (e.g. "ExtractText").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

func (e *ProcessError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pipeline: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("pipeline: %s failed: %v", e.Op, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
