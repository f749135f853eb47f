package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// NewMiniRedis in-memory redis server closed on cleanup
func NewMiniRedis(t testing.TB) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}
