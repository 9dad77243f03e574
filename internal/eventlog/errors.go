package eventlog

// ============================================================================
// Event Log Error Definitions
// Purpose: Define the errors raised while reading an instrumentation log
// ============================================================================

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord indicates a log line could not be parsed into an event,
// even after backslash repair. It is fatal for the whole conversion.
var ErrMalformedRecord = errors.New("eventlog: malformed record")

// MalformedRecordError reports which line failed and why.
type MalformedRecordError struct {
	Line  int   // 1-based line number in the log
	Cause error // Underlying decode or validation error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("eventlog: malformed record at line %d: %v", e.Line, e.Cause)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrMalformedRecord) match any MalformedRecordError.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
