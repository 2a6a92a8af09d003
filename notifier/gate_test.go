package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeGate(t *testing.T) {
	gate := NewDedupeGate()
	assert.True(t, gate.IsNovel("100"), "nothing committed yet")
	_, ok := gate.Last()
	assert.False(t, ok)

	gate.Commit("100")
	assert.False(t, gate.IsNovel("100"))
	assert.True(t, gate.IsNovel("101"))
	// novelty is equality, not ordering
	assert.True(t, gate.IsNovel("99"))

	last, ok := gate.Last()
	assert.True(t, ok)
	assert.Equal(t, Value("100"), last)

	gate.Reset()
	assert.True(t, gate.IsNovel("100"))
}

func TestDedupeGateEmptyValue(t *testing.T) {
	gate := NewDedupeGate()
	assert.True(t, gate.IsNovel(""))
	gate.Commit("")
	assert.False(t, gate.IsNovel(""))
}
