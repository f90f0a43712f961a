package policies

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatCommission(t *testing.T) {
	c, err := NewFlatCommission(decimal.RequireFromString("0.10"))
	require.NoError(t, err)
	rate, err := c.RateFor(context.Background(), "supplier-1")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.1")))

	_, err = NewFlatCommission(decimal.RequireFromString("1.01"))
	assert.ErrorIs(t, err, ErrInvalidCommissionRate)
}

func TestActorRoles(t *testing.T) {
	admin := Actor{ID: "u", Roles: []string{" Admin "}}
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsPrivileged())
	assert.False(t, Actor{ID: "u"}.IsPrivileged())
	assert.True(t, SystemActor("payments").IsPrivileged())
	assert.False(t, SystemActor("payments").IsAdmin())
}
