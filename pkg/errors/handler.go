package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxStackDepth = 32

var (
	handler   ErrorHandler = &LogHandler{}
	handlerMu sync.RWMutex
)

// Handler returns the handler anomalies are reported to.
func Handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// SetHandler replaces the global handler. Nil restores a LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	handler = h
	handlerMu.Unlock()
}

// Report stamps err and hands it to the global handler.
func Report(err *ComponentError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleError(err)
}

// ReportPanic stamps err and hands it to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandlePanic(err)
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Recover reports a panic raised by teardown code and lets the caller
// continue. It must be deferred directly:
//
//	defer errors.Recover("registry.dispose")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(NewPanicError(op, r))
	}
}

// CapturePanic turns a panic in component code into a *PanicError stored in
// *errp, so hooks and methods fail through their normal error return. It
// must be deferred directly:
//
//	func call() (err error) {
//	    defer errors.CapturePanic("card.onSave", &err)
//	    ...
//	}
func CapturePanic(op string, errp *error) {
	if r := recover(); r != nil && errp != nil {
		*errp = NewPanicError(op, r)
	}
}

// NewPanicError wraps a recovered panic value with the stack of the code
// that recovered it.
func NewPanicError(op string, r any) *PanicError {
	return &PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
}

// CaptureStack formats the stack above its caller, one
// "function\n\tfile:line" entry per frame.
func CaptureStack() string {
	pcs := make([]uintptr, maxStackDepth)
	pcs = pcs[:runtime.Callers(3, pcs)]
	if len(pcs) == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(pcs)
	for {
		f, more := frames.Next()
		sb.WriteString(f.Function + "\n\t" + f.File + ":" + strconv.Itoa(f.Line) + "\n")
		if !more {
			return sb.String()
		}
	}
}
