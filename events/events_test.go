package events

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapSink_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewZapSink(zap.New(core))

	boom := errors.New("boom")
	s.Record(Event{Kind: KindAssigned, PoolID: "p", WorkerID: NoWorker, TaskID: 1, Cost: 2})
	s.Record(Event{Kind: KindCompleted, PoolID: "p", WorkerID: 0, TaskID: 1, Cost: 2, Duration: time.Millisecond})
	s.Record(Event{Kind: KindFailed, PoolID: "p", WorkerID: 3, TaskID: 2, Err: boom})
	s.Record(Event{Kind: KindWorkerStopped, PoolID: "p", WorkerID: 3})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, "task assigned", entries[0].Message)
	require.NotContains(t, entries[0].ContextMap(), "worker")
	require.EqualValues(t, 1, entries[0].ContextMap()["task"])

	require.Equal(t, zapcore.InfoLevel, entries[1].Level)
	require.Equal(t, time.Millisecond, entries[1].ContextMap()["duration"])

	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	require.Equal(t, "boom", entries[2].ContextMap()["error"])
	require.EqualValues(t, 3, entries[2].ContextMap()["worker"])

	require.Equal(t, "worker stopped", entries[3].Message)
	require.NotContains(t, entries[3].ContextMap(), "task")
}

func TestZapSink_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewZapSink(zap.New(core))

	s.Record(Event{Kind: KindAssigned, WorkerID: NoWorker})
	s.Record(Event{Kind: KindStarted, WorkerID: 1})

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "task started", logs.All()[0].Message)
}

func TestAsync_ForwardsAndFlushesOnClose(t *testing.T) {
	rec := NewRecorder()
	a := NewAsync(rec, 16)

	for i := range 10 {
		a.Record(Event{Kind: KindCompleted, TaskID: i})
	}
	a.Close()
	a.Close() // idempotent

	got := rec.OfKind(KindCompleted)
	require.Len(t, got, 10)
	for i, e := range got {
		require.Equal(t, i, e.TaskID)
	}
	require.Zero(t, a.Dropped())

	a.Record(Event{Kind: KindCompleted})
	require.EqualValues(t, 1, a.Dropped())
}

func TestAsync_NeverBlocksWhenDownstreamStalls(t *testing.T) {
	unblock := make(chan struct{})
	stalled := SinkFunc(func(Event) { <-unblock })
	a := NewAsync(stalled, 2)

	done := make(chan struct{})
	go func() {
		for range 100 {
			a.Record(Event{Kind: KindStarted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a stalled sink")
	}
	require.Greater(t, a.Dropped(), uint64(0))

	close(unblock)
	a.Close()
}

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	r1, r2 := NewRecorder(), NewRecorder()
	m := Multi(r1, nil, r2, Nop{})

	m.Record(Event{Kind: KindStarted, TaskID: 7})

	require.Equal(t, 1, r1.Count(KindStarted))
	require.Equal(t, 1, r2.Count(KindStarted))
	require.Equal(t, 7, r2.Events()[0].TaskID)
}

func TestRecorder_ConcurrentRecord(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(Event{Kind: KindCompleted, TaskID: i})
		}()
	}
	wg.Wait()
	require.Equal(t, 50, r.Count(KindCompleted))
	require.Len(t, r.Events(), 50)

	r.Reset()
	require.Empty(t, r.Events())
}

func TestEvent_IsTask(t *testing.T) {
	require.True(t, Event{Kind: KindFailed}.IsTask())
	require.False(t, Event{Kind: KindWorkerStarted}.IsTask())
}
