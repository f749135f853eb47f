package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	ID     uint `gorm:"primarykey"`
	Active bool
}

func TestNewSQLite(t *testing.T) {
	h := NewSQLite(t, &account{})
	require.NoError(t, h.DB.Create(&[]account{{Active: true}, {Active: false}, {Active: true}}).Error)

	n, err := h.Count("accounts")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = h.CountWhere("accounts", "active = ?", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, h.DeleteAll("accounts"))
	n, err = h.Count("accounts")
	require.NoError(t, err)
	assert.Zero(t, n)
}
