package worker

import (
	"github.com/ChuLiYu/jobthread-trace/internal/tef"
	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

// Chunk is a contiguous run of events handed to one worker.
type Chunk struct {
	Index  int              // Position of the chunk in the log, used to restore order
	Offset int              // Index of the first event in the full log
	Events []types.RawEvent // Events to convert
}

// Result is the outcome of converting one chunk.
type Result struct {
	Index   int         // Chunk index
	Records []tef.Event // Converted records, nil on error
	Err     error       // Conversion error, if any
}

// ConvertFunc converts the events of a chunk. offset is the index of
// events[0] in the full log.
type ConvertFunc func(offset int, events []types.RawEvent) ([]tef.Event, error)
