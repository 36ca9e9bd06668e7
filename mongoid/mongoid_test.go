package mongoid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_IsValid(t *testing.T) {
	id := New()
	assert.Len(t, id, 24)
	assert.True(t, Valid(id))
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("5449016a4bdc2d6f028b456f"))
	assert.True(t, Valid("5449016A4BDC2D6F028B456F"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("5449016a4bdc2d6f028b456"))   // 23 chars
	assert.False(t, Valid("5449016a4bdc2d6f028b456fa")) // 25 chars
	assert.False(t, Valid("item_X"))
	assert.False(t, Valid("5449016a4bdc2d6f028b456z"))
}
