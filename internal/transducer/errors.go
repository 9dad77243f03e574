package transducer

import (
	"errors"
	"fmt"

	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

// ErrUnresolvedThread indicates an event acts on a thread that no new_thread
// event introduced. The log is internally inconsistent and conversion stops.
var ErrUnresolvedThread = errors.New("transducer: unresolved thread")

// UnresolvedThreadError carries the offending thread and event position.
type UnresolvedThreadError struct {
	ThreadID types.ThreadID // Thread missing from the resolution table
	Index    int            // 0-based index of the event in the log
	Line     int            // Source line of the event, 0 if unknown
	Kind     types.Kind     // Kind of the offending event
}

func (e *UnresolvedThreadError) Error() string {
	msg := fmt.Sprintf("transducer: unresolved thread %d in %s event #%d", e.ThreadID, e.Kind, e.Index)
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	return msg
}

func (e *UnresolvedThreadError) Is(target error) bool {
	return target == ErrUnresolvedThread
}
