package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Dir enables a JSON log file per run when non-empty.
	Dir string
	// RunName becomes part of the log file name.
	RunName string
	// Console receives human-readable output; defaults to stderr.
	Console io.Writer
}

// NewZapLogger builds the console core and, when cfg.Dir is set, a JSON file core.
// Log file name: <timestamp>_<safeRunName>.log inside cfg.Dir.
func NewZapLogger(cfg Config) (*ZapAdapter, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	consoleEncoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoder), zapcore.AddSync(console), level),
	}

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}

		filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), sanitize(cfg.RunName))
		file, err = os.Create(filepath.Join(cfg.Dir, filename))
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}

		fileEncoder := zap.NewProductionEncoderConfig()
		fileEncoder.EncodeTime = zapcore.RFC3339TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	base := zap.New(zapcore.NewTee(cores...))
	return &ZapAdapter{sugar: base.Sugar(), file: file}, nil
}

func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return level, nil
}

// sanitize makes a run name safe for the file system.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
