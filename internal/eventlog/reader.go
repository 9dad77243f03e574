// ============================================================================
// Event Log Reader
// ============================================================================
//
// Package: internal/eventlog
// File: reader.go
// Purpose: Turn a newline-delimited scheduler instrumentation log into
//          typed events
//
// Line format (one JSON object per line):
//   {"t":4000,"e":"start_job","job_id":7,"thread_id":5,"name":""}
//
//   - t: nanosecond timestamp, required
//   - e: event kind, required
//   - pool_id / thread_id / job_id: required per kind (see types.Kind)
//   - name: optional, may be empty
//
// Repair:
//   The scheduler writes names verbatim, so Windows paths end up with bare
//   backslashes ("C:\games\map.bsp") that are not valid JSON escapes.
//   Every backslash is doubled before decoding. This also turns an escaped
//   quote into a literal backslash followed by the end of the string, which
//   matches what the log writer actually produces.
//
// Reading:
//   The log is finite and is read once, in full. Blank lines are skipped;
//   line numbers in errors are physical 1-based line numbers.
//
// ============================================================================

package eventlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

// lineRecord is the on-disk shape of one line. Pointers distinguish a missing
// field from a zero value.
type lineRecord struct {
	T        *int64  `json:"t"`
	E        *string `json:"e"`
	PoolID   *int64  `json:"pool_id"`
	ThreadID *int64  `json:"thread_id"`
	JobID    *int64  `json:"job_id"`
	Name     *string `json:"name"`
}

// Repair doubles every backslash in line so content backslashes survive
// JSON decoding.
func Repair(line string) string {
	return strings.ReplaceAll(line, `\`, `\\`)
}

// Parse repairs and decodes a single log line. lineNo is only used for
// error reporting and for RawEvent.Line.
func Parse(line string, lineNo int) (types.RawEvent, error) {
	var rec lineRecord
	if err := json.Unmarshal([]byte(Repair(line)), &rec); err != nil {
		return types.RawEvent{}, &MalformedRecordError{Line: lineNo, Cause: err}
	}

	if rec.T == nil {
		return types.RawEvent{}, &MalformedRecordError{Line: lineNo, Cause: missingField("t")}
	}
	if rec.E == nil {
		return types.RawEvent{}, &MalformedRecordError{Line: lineNo, Cause: missingField("e")}
	}

	ev := types.RawEvent{
		Timestamp: *rec.T,
		Kind:      types.Kind(*rec.E),
		Line:      lineNo,
	}
	if rec.Name != nil {
		ev.Name = *rec.Name
	}

	for _, f := range ev.Kind.RequiredFields() {
		var v *int64
		switch f {
		case types.FieldPoolID:
			v = rec.PoolID
		case types.FieldThreadID:
			v = rec.ThreadID
		case types.FieldJobID:
			v = rec.JobID
		}
		if v == nil {
			return types.RawEvent{}, &MalformedRecordError{
				Line:  lineNo,
				Cause: fmt.Errorf("%s event %w", ev.Kind, missingField(string(f))),
			}
		}
	}

	if rec.PoolID != nil {
		ev.PoolID = types.PoolID(*rec.PoolID)
	}
	if rec.ThreadID != nil {
		ev.ThreadID = types.ThreadID(*rec.ThreadID)
	}
	if rec.JobID != nil {
		ev.JobID = types.JobID(*rec.JobID)
	}

	return ev, nil
}

// Decode reads the whole stream and parses every non-blank line in order.
// The first malformed line aborts decoding.
func Decode(r io.Reader) ([]types.RawEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	lines := bytes.Split(data, []byte("\n"))
	events := make([]types.RawEvent, 0, len(lines))
	for i, raw := range lines {
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}

		ev, err := Parse(line, i+1)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, nil
}

// ReadFile loads and parses the log at path.
func ReadFile(path string) ([]types.RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}
