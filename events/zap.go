package events

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapSink writes events as structured zap log entries.
// Failed tasks are logged at error level, worker lifecycle and assignment at debug,
// everything else at info.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink returns a sink logging through l. A nil l uses zap.L() at call time.
func NewZapSink(l *zap.Logger) *ZapSink {
	return &ZapSink{log: l}
}

func (s *ZapSink) logger() *zap.Logger {
	if s.log != nil {
		return s.log
	}
	return zap.L().Named("coordinator")
}

func (s *ZapSink) Record(e Event) {
	lvl := levelFor(e.Kind)
	log := s.logger()
	ce := log.Check(lvl, messageFor(e.Kind))
	if ce == nil {
		return
	}
	ce.Write(fields(e)...)
}

func levelFor(k Kind) zapcore.Level {
	switch k {
	case KindFailed:
		return zapcore.ErrorLevel
	case KindAbandoned:
		return zapcore.WarnLevel
	case KindAssigned, KindWorkerStarted, KindWorkerStopped:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func messageFor(k Kind) string {
	switch k {
	case KindAssigned:
		return "task assigned"
	case KindStarted:
		return "task started"
	case KindCompleted:
		return "task completed"
	case KindFailed:
		return "task failed"
	case KindAbandoned:
		return "task abandoned"
	case KindWorkerStarted:
		return "worker started"
	case KindWorkerStopped:
		return "worker stopped"
	default:
		return string(k)
	}
}

func fields(e Event) []zap.Field {
	fs := make([]zap.Field, 0, 7)
	fs = append(fs, zap.String("pool", e.PoolID))
	if e.WorkerID != NoWorker {
		fs = append(fs, zap.Int("worker", e.WorkerID))
	}
	if e.IsTask() {
		fs = append(fs, zap.Int("task", e.TaskID), zap.Uint("cost", e.Cost))
	}
	if e.Duration > 0 {
		fs = append(fs, zap.Duration("duration", e.Duration))
	}
	if e.Err != nil {
		fs = append(fs, zap.Error(e.Err))
	}
	if !e.Time.IsZero() {
		fs = append(fs, zap.Time("at", e.Time))
	}
	return fs
}
