package tef

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		src  string
		ext  string
		want string
	}{
		{"trace/jobthread.log", ".json", "trace/jobthread.json"},
		{"jobthread", ".json", "jobthread.json"},
		{"a.b.log", "", "a.b.json"},
		{"run.log", "trace", "run.trace"},
	}

	for _, tt := range tests {
		got, err := OutputPath(tt.src, tt.ext)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestOutputPath_RefusesToOverwriteInput(t *testing.T) {
	_, err := OutputPath("already.json", ".json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverwriteInput))
}

func TestNewDocument_Defaults(t *testing.T) {
	doc := NewDocument(nil, "")
	assert.NotNil(t, doc.TraceEvents)
	assert.Equal(t, "ns", doc.DisplayTimeUnit)

	data, err := Marshal(doc, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"traceEvents":[],"displayTimeUnit":"ns"}`, string(data))
}

func TestMarshal_FieldNames(t *testing.T) {
	doc := NewDocument([]Event{{
		Timestamp: 3000,
		Name:      "job 7",
		Phase:     Begin,
		Category:  "all",
		ProcessID: 1,
		ThreadID:  5,
		Args:      map[string]any{"job_id": 7},
	}}, "ns")

	data, err := Marshal(doc, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"traceEvents": [
			{"ts":3000,"name":"job 7","ph":"B","cat":"all","pid":1,"tid":5,"args":{"job_id":7}}
		],
		"displayTimeUnit": "ns"
	}`, string(data))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	doc := NewDocument([]Event{{Name: "x", Phase: Instant, Args: map[string]any{}}}, "ns")

	require.NoError(t, WriteFile(path, doc, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Document
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ns", got.DisplayTimeUnit)
	require.Len(t, got.TraceEvents, 1)
	assert.Equal(t, Instant, got.TraceEvents[0].Phase)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")
	err := WriteFile(path, NewDocument(nil, ""), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write temp trace")
}
