package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shelfdesk/shelfdesk/internal/config"
)

var Logger *zap.Logger = zap.NewNop()

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Fallback prints msg without going through zap, for output that must not be
// JSON encoded (SQL traces, startup banners).
func Fallback(level string, msg string) {
	switch level {
	case "Error":
		fmt.Fprint(os.Stderr, msg)
	case "Info":
		fmt.Fprint(os.Stdout, msg)
	case "Debug":
		if config.Opts != nil && config.Opts.LogLevel == "debug" {
			fmt.Fprint(os.Stdout, msg)
		}
	}
}

func NewLogger() *zap.Logger {
	if config.Opts == nil {
		config.GetDefaultOptions()
	}
	rotationLog := &lumberjack.Logger{
		Filename:   config.Opts.LogFile,
		MaxSize:    config.Opts.LogFileMaxSize, // megabytes
		MaxBackups: config.Opts.LogFileMaxBackups,
		MaxAge:     config.Opts.LogFileMaxAge, // days
		Compress:   config.Opts.LogCompress,
	}

	// The CLI prints its results on stdout, keep the console log on stderr.
	return newZap(os.Stderr, rotationLog)
}

// NewNop installs a logger that discards everything.
func NewNop() *zap.Logger {
	Logger = zap.NewNop()
	return Logger
}

func newZap(console io.Writer, rotationLog *lumberjack.Logger) *zap.Logger {
	encodeConfig := zap.NewProductionEncoderConfig()
	encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileEncoder := zapcore.NewJSONEncoder(encodeConfig)
	consoleEncoder := zapcore.NewConsoleEncoder(encodeConfig)

	consoleWriter := zapcore.AddSync(console)
	rotationWrite := zapcore.AddSync(rotationLog)

	level := ParseLevel("")
	if config.Opts != nil {
		level = ParseLevel(config.Opts.LogLevel)
	}

	consoleCore := zapcore.NewCore(consoleEncoder, consoleWriter, level)
	rotationCore := zapcore.NewCore(fileEncoder, rotationWrite, level)

	core := zapcore.NewTee(consoleCore, rotationCore)

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel maps a config level name to a zap level, info by default.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
