package notifier

import "sync"

// DedupeGate remembers the last value that was successfully emitted.
type DedupeGate struct {
	mu        sync.Mutex
	last      Value
	committed bool
}

func NewDedupeGate() *DedupeGate {
	return &DedupeGate{}
}

// IsNovel reports whether candidate differs from the last committed value, or
// whether nothing was committed yet.
func (gate *DedupeGate) IsNovel(candidate Value) bool {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return !gate.committed || gate.last != candidate
}

// Commit is only called once an emission for candidate fully completed.
func (gate *DedupeGate) Commit(candidate Value) {
	gate.mu.Lock()
	gate.last = candidate
	gate.committed = true
	gate.mu.Unlock()
}

func (gate *DedupeGate) Last() (Value, bool) {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.last, gate.committed
}

func (gate *DedupeGate) Reset() {
	gate.mu.Lock()
	gate.last = ""
	gate.committed = false
	gate.mu.Unlock()
}
