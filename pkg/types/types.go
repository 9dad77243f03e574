// Package types defines the scheduler instrumentation records shared by the
// reader, the transducer and the CLI.
package types

import "fmt"

// ThreadID identifies a scheduler worker thread.
type ThreadID int64

// PoolID identifies a thread pool.
type PoolID int64

// JobID identifies a scheduled job.
type JobID int64

// VirtualID is the reserved thread/pool identifier for queue-level activity.
// It is never created by a new_thread event and always resolves to itself.
const VirtualID = 9999

// Kind is the event type carried in the "e" field of a log line.
type Kind string

// Known event kinds. Anything else is converted as a generic instant.
const (
	KindNewThreadPool  Kind = "new_thread_pool"  // pool created
	KindNewThread      Kind = "new_thread"       // thread created inside a pool
	KindNewJob         Kind = "new_job"          // job queued
	KindStartJob       Kind = "start_job"        // job picked up by a thread
	KindFinishJob      Kind = "finish_job"       // job finished on its thread
	KindStartWait      Kind = "start_wait"       // thread blocks
	KindDoneWait       Kind = "done_wait"        // thread wakes up
	KindYieldWaitStart Kind = "yield_wait_start" // running job yields back to the queue
)

// Field names a payload field of a log line.
type Field string

const (
	FieldPoolID   Field = "pool_id"
	FieldThreadID Field = "thread_id"
	FieldJobID    Field = "job_id"
)

// RequiredFields lists the payload fields a kind cannot be converted without.
// Unknown kinds require nothing.
func (k Kind) RequiredFields() []Field {
	switch k {
	case KindNewThreadPool:
		return []Field{FieldPoolID}
	case KindNewThread:
		return []Field{FieldThreadID, FieldPoolID}
	case KindNewJob, KindYieldWaitStart:
		return []Field{FieldJobID, FieldPoolID}
	case KindStartJob, KindFinishJob:
		return []Field{FieldJobID, FieldThreadID}
	case KindStartWait, KindDoneWait:
		return []Field{FieldThreadID}
	}
	return nil
}

// IsKnown reports whether k is one of the kinds with a dedicated conversion rule.
func (k Kind) IsKnown() bool {
	switch k {
	case KindNewThreadPool, KindNewThread, KindNewJob, KindStartJob,
		KindFinishJob, KindStartWait, KindDoneWait, KindYieldWaitStart:
		return true
	}
	return false
}

// RawEvent is one parsed log line.
type RawEvent struct {
	Timestamp int64    // nanoseconds, log-wide epoch
	Kind      Kind     // event type
	PoolID    PoolID   // pool_id payload, zero if absent
	ThreadID  ThreadID // thread_id payload, zero if absent
	JobID     JobID    // job_id payload, zero if absent
	Name      string   // name payload, may be empty
	Line      int      // 1-based line number in the source log
}

// JobName returns the scheduler supplied name, or "job {id}" when it is empty.
func (e RawEvent) JobName() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("job %d", e.JobID)
}
