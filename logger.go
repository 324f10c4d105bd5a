package resample

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false, so slog skips
// building attributes for disabled calls.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var silent = slog.New(nopHandler{})

var current atomic.Pointer[slog.Logger]

func init() { current.Store(silent) }

// SetLogger sets the logger shared by the engine, the dispatcher, the
// worker pool and the registered accelerator. Output is silent until it is
// called; nil restores silence. Safe for concurrent use.
//
// Levels:
//   - Debug: pass plans, cache sizes, declined GPU requests
//   - Info: adapter selection, accelerator registration
//   - Warn: CPU fallback after a GPU error, failed resource release
//
// Example:
//
//	resample.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)

	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	if a != nil {
		propagateLogger(a, l)
	}
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger { return current.Load() }

type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger hands l to accelerators that log on their own.
func propagateLogger(a GPUAccelerator, l *slog.Logger) {
	if ls, ok := a.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
