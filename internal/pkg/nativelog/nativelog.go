package nativelog

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultFilename   = "server.log"
	defaultLogDirPerm = 0o755
)

// Options controls where and how much the process logs.
type Options struct {
	Dir          string
	Level        string
	RotateSizeMB int
	RotateKeep   int
	Compress     bool
}

// ParseLevel converts a config string into a zap level. Unknown values mean info.
func ParseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewZapLogger creates a zap logger that writes a console stream to stdout and
// JSON lines to a size-rotated file under opts.Dir.
func NewZapLogger(opts Options) (*zap.Logger, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		dir = filepath.Join(".", "logs")
	}
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(ParseLevel(opts.Level))

	consoleConfig := zap.NewProductionEncoderConfig()
	consoleConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	consoleConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	fileConfig := zap.NewProductionEncoderConfig()
	fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(dir, defaultFilename),
		MaxSize:    opts.RotateSizeMB,
		MaxBackups: opts.RotateKeep,
		Compress:   opts.Compress,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(fileWriter), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}
