package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/jobthread-trace/internal/tef"
	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

func TestNewCollector(t *testing.T) {
	collector := NewCollector()

	assert.NotNil(t, collector, "NewCollector should return a non-nil collector")
	assert.NotNil(t, collector.events, "events counter should be initialized")
	assert.NotNil(t, collector.records, "records counter should be initialized")
	assert.NotNil(t, collector.failures, "failures counter should be initialized")
	assert.NotNil(t, collector.duration, "duration gauge should be initialized")
	assert.NotNil(t, collector.logSpan, "log span gauge should be initialized")
}

func TestNewCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector()
		NewCollector()
	}, "collectors must not share a registerer")
}

func TestObserveEvents(t *testing.T) {
	collector := NewCollector()
	collector.ObserveEvents([]types.RawEvent{
		{Kind: types.KindNewJob},
		{Kind: types.KindNewJob},
		{Kind: types.KindStartJob},
		{Kind: "steal"},
		{Kind: "park"},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.events.WithLabelValues("new_job")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.events.WithLabelValues("start_job")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.events.WithLabelValues("other")))
}

func TestObserveRecords(t *testing.T) {
	collector := NewCollector()
	collector.ObserveRecords([]tef.Event{
		{Phase: tef.Begin, Timestamp: 10},
		{Phase: tef.End, Timestamp: 40},
		{Phase: tef.Begin, Timestamp: 30},
		{Phase: tef.Metadata, Timestamp: 0},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.records.WithLabelValues("B")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.records.WithLabelValues("E")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.records.WithLabelValues("M")))
	assert.Equal(t, 40.0, testutil.ToFloat64(collector.logSpan))
}

func TestObserveFailureAndDuration(t *testing.T) {
	collector := NewCollector()
	collector.ObserveFailure("unresolved_thread")
	collector.ObserveDuration(1500 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.failures.WithLabelValues("unresolved_thread")))
	assert.Equal(t, 1.5, testutil.ToFloat64(collector.duration))
}

func TestWriteTextfile(t *testing.T) {
	collector := NewCollector()
	collector.ObserveEvents([]types.RawEvent{{Kind: types.KindNewJob}})

	path := filepath.Join(t.TempDir(), "jobtrace.prom")
	require.NoError(t, collector.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `jobtrace_events_total{kind="new_job"} 1`)
	assert.Contains(t, string(data), "jobtrace_conversion_seconds")
}
