// Package logging builds the zap logger used by the coordinator command.
package logging

import (
	"errors"
	"io"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const Namespace = "logging"

var ErrInvalid = errors.New(Namespace + ": invalid logger settings")

// New returns a logger writing to w at level in the given format ("console" or "json").
func New(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errorc.With(ErrInvalid, errorc.String("level", level))
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	switch format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, errorc.With(ErrInvalid, errorc.String("format", format))
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), lvl)
	return zap.New(core, zap.AddCaller()), nil
}
