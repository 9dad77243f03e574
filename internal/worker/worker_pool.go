// ============================================================================
// Chunk Worker Pool - parallel pass 2
// ============================================================================
//
// Package: internal/worker
// File: worker_pool.go
// Purpose: Convert fixed-size chunks of events on a bounded number of
//          goroutines and stitch the results back in log order
//
// Why chunks are independent:
//   Pass 2 reads only the frozen Snapshot (resolution table + origin), so a
//   chunk can be converted without looking at any other chunk.
//
// Ordering:
//   Results are stored by chunk index and concatenated in index order, so the
//   output is identical to a sequential run. start_job's End/Begin pair is
//   produced inside one ConvertFunc call and is never split.
//
// Errors:
//   Every chunk runs to completion. If several fail, the error of the lowest
//   chunk index is returned, which is the error a sequential run would hit
//   first. A cancelled context stops chunks that have not started yet.
//
//   ┌──────────┐   chunks   ┌──────────┐
//   │  events  │ ─────────→ │ worker 1 │ ─┐
//   └──────────┘            │ worker 2 │ ─┼→ results[index] → concat
//                           │ worker N │ ─┘
//                           └──────────┘
//
// ============================================================================

package worker

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/ChuLiYu/jobthread-trace/internal/tef"
	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

// DefaultChunkSize is used when the pool is built with a non-positive size.
const DefaultChunkSize = 4096

// ErrNoConvertFunc indicates Run was called without a conversion function.
var ErrNoConvertFunc = errors.New("worker pool: nil convert function")

// Pool converts chunks concurrently.
type Pool struct {
	workers   int // Maximum concurrent chunks
	chunkSize int // Events per chunk
}

// NewPool builds a pool. workers < 1 is treated as 1.
func NewPool(workers, chunkSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &Pool{workers: workers, chunkSize: chunkSize}
}

// GetWorkerCount returns the concurrency limit.
func (p *Pool) GetWorkerCount() int {
	return p.workers
}

// Split cuts events into chunks of at most chunkSize events.
func (p *Pool) Split(events []types.RawEvent) []Chunk {
	chunks := make([]Chunk, 0, (len(events)+p.chunkSize-1)/p.chunkSize)
	for start := 0; start < len(events); start += p.chunkSize {
		end := min(start+p.chunkSize, len(events))
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Offset: start,
			Events: events[start:end],
		})
	}
	return chunks
}

// Run converts all events with fn and returns the records in log order.
func (p *Pool) Run(ctx context.Context, events []types.RawEvent, fn ConvertFunc) ([]tef.Event, error) {
	if fn == nil {
		return nil, ErrNoConvertFunc
	}

	chunks := p.Split(events)
	results := make([]Result, len(chunks))

	var g errgroup.Group
	g.SetLimit(p.workers)

	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			results[chunk.Index] = p.execute(ctx, chunk, fn)
			return nil
		})
	}
	g.Wait()

	total := 0
	for _, res := range results {
		if res.Err != nil {
			return nil, res.Err
		}
		total += len(res.Records)
	}

	records := make([]tef.Event, 0, total)
	for _, res := range results {
		records = append(records, res.Records...)
	}
	return records, nil
}

func (p *Pool) execute(ctx context.Context, chunk Chunk, fn ConvertFunc) Result {
	if err := ctx.Err(); err != nil {
		return Result{Index: chunk.Index, Err: err}
	}

	records, err := fn(chunk.Offset, chunk.Events)
	return Result{Index: chunk.Index, Records: records, Err: err}
}
