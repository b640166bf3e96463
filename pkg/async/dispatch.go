package async

import "sync"

var (
	dispatchFunc func(callback func())
	dispatchMu   sync.RWMutex
)

// RegisterDispatch sets the function used to schedule callbacks on the
// host's UI thread. Pass nil to run callbacks inline.
func RegisterDispatch(fn func(callback func())) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// Dispatch schedules a callback to run on the UI thread.
// Returns true if the callback was successfully scheduled, false if no dispatch function
// is registered or the callback is nil.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}

// Run dispatches callback to the UI thread if a dispatcher is registered
// and otherwise calls it directly.
func Run(callback func()) {
	if callback == nil {
		return
	}
	if !Dispatch(callback) {
		callback()
	}
}
