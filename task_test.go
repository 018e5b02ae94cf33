package coordinator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewTasks(t *testing.T) {
	tasks := NewTasks(3, 0, 7)
	require.Len(t, tasks, 3)
	for i, c := range []uint{3, 0, 7} {
		require.Equal(t, i, tasks[i].ID())
		require.Equal(t, c, tasks[i].Cost())
	}
	require.Empty(t, NewTasks())
}

func TestTask_String(t *testing.T) {
	require.Equal(t, "task(id=4,cost=2)", NewTask(4, 2).String())
}

func TestTask_WithIDCopies(t *testing.T) {
	orig := NewTask(1, 5)
	cp := orig.withID(9)
	require.Equal(t, 1, orig.ID())
	require.Equal(t, 9, cp.ID())
	require.Equal(t, uint(5), cp.Cost())
}

func TestSleep(t *testing.T) {
	exec := Sleep(10 * time.Millisecond)

	start := time.Now()
	require.NoError(t, exec.Execute(context.Background(), NewTask(0, 0)))
	require.Less(t, time.Since(start), 10*time.Millisecond)

	start = time.Now()
	require.NoError(t, exec.Execute(context.Background(), NewTask(0, 3)))
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, exec.Execute(ctx, NewTask(0, 100)), context.Canceled)
}

func TestTaskError(t *testing.T) {
	base := errors.New("disk full")
	err := newTaskError(base, 3, 1)

	require.ErrorIs(t, err, base)
	require.Equal(t, "disk full", err.Error())
	require.Equal(t, "task(id=3,worker=1): disk full", fmt.Sprintf("%+v", err))
	require.Equal(t, "disk full", fmt.Sprintf("%v", err))
	require.Equal(t, `"disk full"`, fmt.Sprintf("%q", err))

	wrapped := fmt.Errorf("outer: %w", err)
	id, ok := ExtractTaskID(wrapped)
	require.True(t, ok)
	require.Equal(t, 3, id)
	wid, ok := ExtractWorkerID(wrapped)
	require.True(t, ok)
	require.Equal(t, 1, wid)

	_, ok = ExtractTaskID(base)
	require.False(t, ok)
	require.NoError(t, newTaskError(nil, 0, 0))
}

func TestParseShutdownPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ShutdownPolicy
		wantErr bool
	}{
		{"drain", ShutdownDrain, false},
		{"abandon", ShutdownAbandon, false},
		{"", "", true},
		{"Drain", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShutdownPolicy(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestWorkerStatus_String(t *testing.T) {
	require.Equal(t, "idle", WorkerIdle.String())
	require.Equal(t, "running", WorkerRunning.String())
	require.Equal(t, "stopping", WorkerStopping.String())
	require.Equal(t, "terminated", WorkerTerminated.String())
	require.Equal(t, "unknown", WorkerStatus(42).String())
}
