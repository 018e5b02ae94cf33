package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "json")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("task completed", zap.Int("task", 3))
	require.NoError(t, l.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "task completed", entry["msg"])
	require.Equal(t, "info", entry["level"])
	require.EqualValues(t, 3, entry["task"])
	require.Contains(t, entry, "ts")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", "console")
	require.NoError(t, err)

	l.Debug("worker started", zap.Int("worker", 1))
	require.NoError(t, l.Sync())
	require.Contains(t, buf.String(), "DEBUG")
	require.Contains(t, buf.String(), "worker started")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "json")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = New(&bytes.Buffer{}, "info", "xml")
	require.ErrorIs(t, err, ErrInvalid)
}
