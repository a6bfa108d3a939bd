package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wichananm65/grocery-store/internal/config"
)

// New builds the process logger. In production mode records are JSON,
// otherwise console encoded. When file output is enabled the log file is
// rotated by lumberjack and teed with stdout.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	}

	if !cfg.FileEnable {
		return zapConfig.Build(zap.AddCaller())
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotating),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller()), nil
}
