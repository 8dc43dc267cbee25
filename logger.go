package cloudfx

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/cloudfx/gpucore"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for cloudfx and all its sub-packages.
// By default cloudfx produces no log output. Pass nil to restore that.
//
// SetLogger is safe for concurrent use.
//
// Log levels used by cloudfx:
//   - [slog.LevelDebug]: buffer sizes, dispatch shapes, per-frame skips
//   - [slog.LevelInfo]: noise generated, volume saved or loaded, adapter probed
//   - [slog.LevelWarn]: frames dropped, kernel compile fallbacks, effects disabled
//
// Example:
//
//	cloudfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	gpucore.SetLogger(l)
}

// Logger returns the current logger. Sub-packages (volume, cloud, blur,
// shader, config) log through it.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
