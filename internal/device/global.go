package device

import "sync"

// The proving pipeline typically shares one manager process-wide, the
// way a driver context is shared. SetGlobal installs it; Global hands
// it back to call sites that cannot thread it through.
var (
	globalMu sync.Mutex
	global   *Manager
)

// SetGlobal installs the process-wide manager, replacing any previous
// one. The previous manager is returned so the caller can deinit it.
func SetGlobal(m *Manager) *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := global
	global = m
	return prev
}

// Global returns the process-wide manager, or nil if none is installed.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}
