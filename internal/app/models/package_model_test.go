package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPackage(t *testing.T) {
	pkg, ok := FindPackage("p2")
	require.True(t, ok)
	assert.True(t, pkg.PriceUGX.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 3, pkg.Session.AccessHours)

	_, ok = FindPackage("p9")
	assert.False(t, ok)

	// The free-trial pool is not sellable.
	_, ok = FindPackage(FreeTrialPackage)
	assert.False(t, ok)
}

func TestSessionForPackage(t *testing.T) {
	assert.Equal(t, "5M/5M", SessionForPackage("p3").RateLimit)
	assert.Equal(t, FreeTrialSession, SessionForPackage(FreeTrialPackage))

	// Unknown tiers on an already-sold voucher fall back rather than deny.
	assert.Equal(t, Packages["p1"].Session, SessionForPackage("retired-tier"))
}
