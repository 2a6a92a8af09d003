package notifier

import "sync"

// State holds what the page used to keep in hooks: the connected recipient,
// the subscription flag and the pause switch. It is owned by an Engine.
type State struct {
	mu         sync.RWMutex
	recipient  Recipient
	subscribed bool
	enabled    bool
	generation uint64
}

func NewState() *State {
	return &State{enabled: true}
}

func (state *State) Recipient() Recipient {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.recipient
}

// SetRecipient returns true when the recipient actually changed.
func (state *State) SetRecipient(recipient Recipient) bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.recipient == recipient {
		return false
	}
	state.recipient = recipient
	state.generation++
	return true
}

func (state *State) ClearRecipient() {
	state.SetRecipient("")
}

func (state *State) Subscribed() bool {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.subscribed
}

func (state *State) SetSubscribed(subscribed bool) {
	state.mu.Lock()
	state.subscribed = subscribed
	state.mu.Unlock()
}

func (state *State) Enabled() bool {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.enabled
}

func (state *State) SetEnabled(enabled bool) {
	state.mu.Lock()
	state.enabled = enabled
	state.mu.Unlock()
}

// Toggle flips the enabled flag and returns the new value.
func (state *State) Toggle() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.enabled = !state.enabled
	return state.enabled
}

// Ready returns the recipient and the generation it was set at when a tick may
// run: subscribed, enabled and a recipient set.
func (state *State) Ready() (Recipient, uint64, bool) {
	state.mu.RLock()
	defer state.mu.RUnlock()
	ok := state.subscribed && state.enabled && state.recipient != ""
	return state.recipient, state.generation, ok
}

func (state *State) Generation() uint64 {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.generation
}
