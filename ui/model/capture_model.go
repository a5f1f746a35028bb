package model

import (
	"sync"
	"sync/atomic"
)

// CaptureModel tracks whether detection is running and the id of the current run.
// The zero value is disabled and usable. Concurrency-safe because UI callbacks,
// presenter ticks and the detection worker all read it.
type CaptureModel struct {
	enabled atomic.Bool
	mu      sync.Mutex
	session string
}

// Enabled reports whether capture is currently enabled.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag. Enabling with a new session id starts a new
// run; disabling keeps the last id so late results are still attributed to it.
func (m *CaptureModel) SetEnabled(b bool, session string) {
	if m == nil {
		return
	}
	if b {
		m.mu.Lock()
		m.session = session
		m.mu.Unlock()
	}
	m.enabled.Store(b)
}

// SessionID returns the id of the current or most recent run.
func (m *CaptureModel) SessionID() string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}
