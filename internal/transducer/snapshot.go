package transducer

import (
	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

// Snapshot is the read-only result of the first pass: the thread→pool
// resolution table and the log's time origin. It is never mutated after
// BuildSnapshot returns, so it can be shared by concurrent converters.
type Snapshot struct {
	origin int64
	pools  map[types.ThreadID]types.PoolID
}

// BuildSnapshot scans every event once. The origin is the minimum timestamp of
// the whole log, not of any prefix. A thread created twice keeps its last pool.
func BuildSnapshot(events []types.RawEvent) *Snapshot {
	s := &Snapshot{
		pools: map[types.ThreadID]types.PoolID{
			types.VirtualID: types.VirtualID,
		},
	}

	for i, ev := range events {
		if i == 0 || ev.Timestamp < s.origin {
			s.origin = ev.Timestamp
		}
		if ev.Kind == types.KindNewThread {
			s.pools[ev.ThreadID] = ev.PoolID
		}
	}

	return s
}

// Origin returns the minimum timestamp in nanoseconds, 0 for an empty log.
func (s *Snapshot) Origin() int64 {
	return s.origin
}

// PoolOf resolves the pool owning thread.
func (s *Snapshot) PoolOf(thread types.ThreadID) (types.PoolID, bool) {
	pool, ok := s.pools[thread]
	return pool, ok
}

// Normalize converts a log timestamp to microseconds from the origin,
// truncating toward zero.
func (s *Snapshot) Normalize(ts int64) int64 {
	return (ts - s.origin) / 1000
}

// Threads returns the number of real threads in the table.
func (s *Snapshot) Threads() int {
	return len(s.pools) - 1
}
