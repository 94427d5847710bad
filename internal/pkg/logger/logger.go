package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Глобальный логгер процесса.
var L = zap.NewNop()

// Init настраивает глобальный zap-логгер. level — debug/info/warn/error,
// production переключает на JSON-формат.
func Init(level string, production bool) error {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
		fmt.Fprintf(os.Stderr, "invalid log level %q, falling back to info\n", level)
	}

	var (
		lg  *zap.Logger
		err error
	)
	if production {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
		lg, err = cfg.Build()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
		lg, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to build zap logger: %w", err)
	}

	L = lg
	return nil
}

// Sync сбрасывает буферы; вызывать перед выходом из процесса.
func Sync() {
	_ = L.Sync()
}
