// ============================================================================
// Event Transducer - pass 2
// ============================================================================
//
// Package: internal/transducer
// File: converter.go
// Purpose: Map each scheduler event to zero, one or two trace records
//
// Timelines:
//   Every pool is a trace process. Each worker thread is a trace thread of its
//   pool. The reserved VirtualID thread inside each pool is the queue: a job
//   is "queued" between new_job and start_job, drawn on that thread.
//
// Rules:
//   new_thread_pool  → Instant + Metadata(process_name) on the pool
//   new_job          → Begin on (pool, virtual)
//   start_job        → End on (pool, virtual), then Begin on (pool, thread)
//   finish_job       → End on (pool, thread)
//   start_wait       → Begin "wait" on (pool, thread)
//   done_wait        → End "wait" on (pool, thread)
//   yield_wait_start → End on (pool, virtual); no Begin is synthesized
//   anything else    → Instant named after the kind on (virtual, virtual)
//
// Pool of a thread comes from the Snapshot; a miss is UnresolvedThreadError.
// Conversion of one event depends only on the event and the Snapshot.
//
// ============================================================================

package transducer

import (
	"github.com/ChuLiYu/jobthread-trace/internal/tef"
	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

// DefaultCategory is the "cat" label used when none is configured.
const DefaultCategory = "all"

// waitName labels start_wait/done_wait spans.
const waitName = "wait"

// processNameMetadata is the metadata record name trace viewers use for
// process lane labels.
const processNameMetadata = "process_name"

// Converter turns events into trace records against a fixed Snapshot.
type Converter struct {
	snap     *Snapshot
	category string
}

// NewConverter builds a converter. An empty category uses DefaultCategory.
func NewConverter(snap *Snapshot, category string) *Converter {
	if category == "" {
		category = DefaultCategory
	}
	return &Converter{snap: snap, category: category}
}

// Convert converts the whole sequence in order.
func (c *Converter) Convert(events []types.RawEvent) ([]tef.Event, error) {
	return c.ConvertRange(0, events)
}

// ConvertRange converts a contiguous slice whose first element sits at
// position offset of the full log. offset only affects error reporting.
func (c *Converter) ConvertRange(offset int, events []types.RawEvent) ([]tef.Event, error) {
	records := make([]tef.Event, 0, len(events)+len(events)/4)
	for i, ev := range events {
		out, err := c.ConvertEvent(offset+i, ev)
		if err != nil {
			return nil, err
		}
		records = append(records, out...)
	}
	return records, nil
}

// ConvertEvent converts a single event. index is its position in the log.
func (c *Converter) ConvertEvent(index int, ev types.RawEvent) ([]tef.Event, error) {
	base := c.record(ev, string(ev.Kind), tef.Instant, types.VirtualID, types.VirtualID)

	switch ev.Kind {
	case types.KindNewThreadPool:
		base.ProcessID = int64(ev.PoolID)
		meta := c.record(ev, processNameMetadata, tef.Metadata, int64(ev.PoolID), types.VirtualID)
		meta.Args["name"] = ev.Name
		return []tef.Event{base, meta}, nil

	case types.KindNewJob:
		return []tef.Event{c.jobRecord(ev, tef.Begin, int64(ev.PoolID), types.VirtualID)}, nil

	case types.KindStartJob:
		pool, err := c.resolve(index, ev)
		if err != nil {
			return nil, err
		}
		return []tef.Event{
			c.jobRecord(ev, tef.End, pool, types.VirtualID),
			c.jobRecord(ev, tef.Begin, pool, int64(ev.ThreadID)),
		}, nil

	case types.KindFinishJob:
		pool, err := c.resolve(index, ev)
		if err != nil {
			return nil, err
		}
		return []tef.Event{c.jobRecord(ev, tef.End, pool, int64(ev.ThreadID))}, nil

	case types.KindStartWait, types.KindDoneWait:
		pool, err := c.resolve(index, ev)
		if err != nil {
			return nil, err
		}
		phase := tef.Begin
		if ev.Kind == types.KindDoneWait {
			phase = tef.End
		}
		return []tef.Event{c.record(ev, waitName, phase, pool, int64(ev.ThreadID))}, nil

	case types.KindYieldWaitStart:
		return []tef.Event{c.jobRecord(ev, tef.End, int64(ev.PoolID), types.VirtualID)}, nil
	}

	return []tef.Event{base}, nil
}

func (c *Converter) resolve(index int, ev types.RawEvent) (int64, error) {
	pool, ok := c.snap.PoolOf(ev.ThreadID)
	if !ok {
		return 0, &UnresolvedThreadError{
			ThreadID: ev.ThreadID,
			Index:    index,
			Line:     ev.Line,
			Kind:     ev.Kind,
		}
	}
	return int64(pool), nil
}

func (c *Converter) record(ev types.RawEvent, name string, phase tef.Phase, pid, tid int64) tef.Event {
	return tef.Event{
		Timestamp: c.snap.Normalize(ev.Timestamp),
		Name:      name,
		Phase:     phase,
		Category:  c.category,
		ProcessID: pid,
		ThreadID:  tid,
		Args:      map[string]any{},
	}
}

func (c *Converter) jobRecord(ev types.RawEvent, phase tef.Phase, pid, tid int64) tef.Event {
	rec := c.record(ev, ev.JobName(), phase, pid, tid)
	rec.Args["job_id"] = int64(ev.JobID)
	return rec
}
