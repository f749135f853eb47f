package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	r.Register(New(70, 1, "cache", "error.cache.miss", "miss"))
	r.Register(New(80, 1, "auth", "error.auth.invalid_token", "invalid token"))

	assert.Equal(t, 2, r.Count())
	key, ok := r.Lookup(700001)
	assert.True(t, ok)
	assert.Equal(t, "cache:error.cache.miss", key)
}

func TestRegistry_Register_Idempotent(t *testing.T) {
	r := NewRegistry()

	r.Register(New(70, 1, "cache", "error.cache.miss", "miss"))
	r.Register(New(70, 1, "cache", "error.cache.miss", "miss again"))

	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Register_Conflict(t *testing.T) {
	r := NewRegistry()
	r.Register(New(70, 1, "cache", "error.cache.miss", "miss"))

	assert.Panics(t, func() {
		r.Register(New(70, 1, "cache", "error.cache.other", "other"))
	})
}
