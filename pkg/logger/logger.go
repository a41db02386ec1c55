package logger

import (
	"os"
	"path/filepath"

	"placeprep_backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 全局日志实例，未初始化时为 Nop，便于测试直接调用
var Log = zap.NewNop()

// InitLogger 同时输出到滚动文件（JSON）与标准输出；release 模式下标准输出也是 JSON
func InitLogger(cfg *config.Config) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	dir := cfg.Log.Dir
	if dir == "" {
		dir = "logs"
	}
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, "placeprep.log"),
		MaxSize:    max(cfg.Log.MaxSizeMB, 1),
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	level := Level(cfg)
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	if cfg.Server.Mode == "release" {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
	)

	Log = zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(zap.String("service", "placeprep")),
	)
}

// Level 优先使用 log.level，未设置或无法解析时按运行模式决定
func Level(cfg *config.Config) zapcore.Level {
	if cfg.Log.Level != "" {
		if l, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			return l
		}
	}
	if cfg.Server.Mode == "debug" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// Named 返回带组件名的子日志
func Named(component string) *zap.Logger {
	return Log.Named(component)
}
