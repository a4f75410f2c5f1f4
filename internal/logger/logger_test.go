package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	l := New(&buf, loc, "processing")
	l.Info("document_completed", map[string]any{"document_id": "d1"})
	l.Error("document_failed", errors.New("boom"), nil)
	l.With("analyzer").Warn("task_failed", map[string]any{"task": "summary"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "document_completed", lines[0]["event"])
	assert.Equal(t, "processing", lines[0]["component"])
	assert.Equal(t, "d1", lines[0]["document_id"])
	assert.Contains(t, lines[0]["ts"], "+09:00")

	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error_message"])

	assert.Equal(t, "warn", lines[2]["level"])
	assert.Equal(t, "analyzer", lines[2]["component"])
}

func TestLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil, "auth")

	l.Debug("hidden", nil)
	assert.Zero(t, buf.Len())

	l.SetDebug(true)
	l.With("service").Debug("visible", map[string]any{"user_id": "u1"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "visible", lines[0]["event"])
	assert.Equal(t, "service", lines[0]["component"])
}

func TestLogger_LogDerivesLevelFromStatus(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil, "database")

	l.Log(map[string]any{"event": "db_migration_failed", "status": "error"})
	l.Log(map[string]any{"event": "db_migration_step", "status": "success"})
	l.Log(map[string]any{"event": "custom", "level": "debug", "component": "other"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "info", lines[1]["level"])
	assert.Equal(t, "debug", lines[2]["level"])
	assert.Equal(t, "other", lines[2]["component"])
	assert.Equal(t, "database", lines[1]["component"])
}
