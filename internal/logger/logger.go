package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op logger until Init is called so
// packages can log unconditionally, including from tests.
var Log = zap.NewNop()

// Init builds the production logger.
func Init() {
	InitWithLevel(false)
}

// InitWithLevel builds a development logger with debug output when debug is set,
// otherwise a production logger at info level.
func InitWithLevel(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build()
	if err != nil {
		// Fall back to the example logger rather than running blind.
		l = zap.NewExample()
		l.Warn("Logger configuration failed, using example logger", zap.Error(err))
	}
	Log = l
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}
