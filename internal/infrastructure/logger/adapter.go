package logger

import (
	"errors"
	"os"
	"sort"
	"syscall"

	"earthreach/internal/application/port/output"

	"go.uber.org/zap"
)

var _ output.LoggerPort = (*ZapAdapter)(nil)

type ZapAdapter struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// NewNop returns a logger that discards everything.
func NewNop() *ZapAdapter {
	return &ZapAdapter{sugar: zap.NewNop().Sugar()}
}

// NewFromZap wraps an existing zap logger, mostly for tests using zaptest/observer.
func NewFromZap(l *zap.Logger) *ZapAdapter {
	return &ZapAdapter{sugar: l.Sugar()}
}

func (l *ZapAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *ZapAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *ZapAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *ZapAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *ZapAdapter) Named(component string) output.LoggerPort {
	return &ZapAdapter{sugar: l.sugar.Named(component), file: l.file}
}

func (l *ZapAdapter) WithField(key string, value any) output.LoggerPort {
	return &ZapAdapter{sugar: l.sugar.With(key, value), file: l.file}
}

func (l *ZapAdapter) WithFields(fields map[string]any) output.LoggerPort {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}

	return &ZapAdapter{sugar: l.sugar.With(args...), file: l.file}
}

// Close flushes buffered entries and closes the log file, if any.
func (l *ZapAdapter) Close() error {
	err := l.sugar.Sync()
	// Syncing a terminal returns EINVAL/ENOTTY on Linux.
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		err = nil
	}
	if l.file != nil {
		if cerr := l.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		l.file = nil
	}
	return err
}
