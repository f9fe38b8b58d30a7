// Package monitoring reports unexpected failures to an error tracker. The
// process wide monitor defaults to a no-op and is replaced at startup.
package monitoring

import (
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(v any, tags map[string]string)
	Flush(timeout time.Duration) bool
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any, map[string]string)       {}
func (NopMonitor) Flush(time.Duration) bool                  { return true }

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor restores the no-op.
func Init(m Monitor) {
	mu.Lock()
	defer mu.Unlock()
	if m == nil {
		m = NopMonitor{}
	}
	current = m
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

// Recover reports a panic and re-panics. It must be deferred directly.
func Recover(tags map[string]string) {
	if r := recover(); r != nil {
		m := get()
		m.CapturePanic(r, tags)
		m.Flush(2 * time.Second)
		panic(r)
	}
}

// Flush waits for buffered events to be sent.
func Flush(d time.Duration) bool {
	return get().Flush(d)
}
