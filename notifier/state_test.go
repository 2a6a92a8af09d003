package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateDefaults(t *testing.T) {
	state := NewState()
	assert.True(t, state.Enabled())
	assert.False(t, state.Subscribed())
	assert.Equal(t, Recipient(""), state.Recipient())
	_, _, ready := state.Ready()
	assert.False(t, ready)
}

func TestStateReady(t *testing.T) {
	state := NewState()
	state.SetSubscribed(true)
	_, _, ready := state.Ready()
	assert.False(t, ready, "no recipient")

	assert.True(t, state.SetRecipient("eip155:1:0xabc"))
	recipient, generation, ready := state.Ready()
	assert.True(t, ready)
	assert.Equal(t, Recipient("eip155:1:0xabc"), recipient)
	assert.Equal(t, uint64(1), generation)

	assert.False(t, state.Toggle())
	_, _, ready = state.Ready()
	assert.False(t, ready, "paused")
	assert.True(t, state.Toggle())

	state.SetSubscribed(false)
	_, _, ready = state.Ready()
	assert.False(t, ready, "unsubscribed")
}

func TestStateGeneration(t *testing.T) {
	state := NewState()
	state.SetRecipient("eip155:1:0xabc")
	assert.False(t, state.SetRecipient("eip155:1:0xabc"), "same recipient")
	assert.Equal(t, uint64(1), state.Generation())
	state.ClearRecipient()
	assert.Equal(t, uint64(2), state.Generation())
	assert.Equal(t, Recipient(""), state.Recipient())
}
