package errors

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
)

// Logger returns the logger used by LogHandler.
// It lazily builds a production logger writing to stderr.
func Logger() *zap.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		built, err := zap.NewProduction()
		if err != nil {
			built = zap.NewNop()
		}
		logger = built
	}
	return logger
}

// SetLogger replaces the logger used by LogHandler. Pass nil to restore the
// default production logger.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// LogHandler is an ErrorHandler that logs errors through zap.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// HandleError logs a ComponentError.
func (h *LogHandler) HandleError(err *ComponentError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	}
	if err.Component != "" {
		fields = append(fields, zap.String("component", err.Component))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}

	// Teardown anomalies are recoverable by definition.
	if err.Kind == KindTeardown {
		Logger().Warn("viewkit error", fields...)
		return
	}
	Logger().Error("viewkit error", fields...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	Logger().Error("viewkit panic", fields...)
}
