// Package tef holds the subset of the Chrome Trace Event Format emitted by the
// converter.
//
// Format reference:
// https://docs.google.com/document/d/1CvAClvFfyA5R-PhYUmn5OOQtYMH4h6I0nSsKchNAySU
package tef

// Phase is the "ph" field of a trace event.
type Phase string

const (
	Instant  Phase = "i"
	Begin    Phase = "B"
	End      Phase = "E"
	Metadata Phase = "M"
)

// DefaultDisplayTimeUnit is the displayTimeUnit written to every document.
const DefaultDisplayTimeUnit = "ns"

// Event is one span record. Timestamps are microseconds from the log origin.
type Event struct {
	Timestamp int64          `json:"ts"`
	Name      string         `json:"name"`
	Phase     Phase          `json:"ph"`
	Category  string         `json:"cat"`
	ProcessID int64          `json:"pid"`
	ThreadID  int64          `json:"tid"`
	Args      map[string]any `json:"args"`
}

// Document is the top-level trace file.
type Document struct {
	TraceEvents     []Event `json:"traceEvents"`
	DisplayTimeUnit string  `json:"displayTimeUnit"`
}

// NewDocument wraps records in a document. A nil slice is written as an empty
// array, and an empty unit falls back to DefaultDisplayTimeUnit.
func NewDocument(records []Event, unit string) Document {
	if records == nil {
		records = []Event{}
	}
	if unit == "" {
		unit = DefaultDisplayTimeUnit
	}
	return Document{TraceEvents: records, DisplayTimeUnit: unit}
}
