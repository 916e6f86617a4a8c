package session

// LockCount exposes the number of live lock entries to tests.
func (m *Manager) LockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
