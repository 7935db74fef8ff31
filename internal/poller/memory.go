package poller

// errorKey is the reserved dedup key under which the last delivered error
// report is remembered. A homework literally named "error" would share the
// slot; real homework names never hit it.
const errorKey = "error"

// memory remembers the last message delivered per dedup key. It lives for
// the process lifetime and is never persisted; the key set is the small,
// fixed set of homework names plus the error sentinel, so it stays bounded
// in practice.
type memory struct {
	last map[string]string
}

func newMemory() *memory {
	return &memory{last: make(map[string]string)}
}

// ShouldSend reports whether message differs from what was last delivered
// under key (or nothing was delivered yet).
func (m *memory) ShouldSend(key, message string) bool {
	prev, ok := m.last[key]
	return !ok || prev != message
}

// Record stores message as the last delivered value for key.
func (m *memory) Record(key, message string) {
	m.last[key] = message
}

// ClearError forgets the last delivered error report. Called after every
// fully clean iteration so a recurring failure is reported again once it
// comes back.
func (m *memory) ClearError() {
	delete(m.last, errorKey)
}
