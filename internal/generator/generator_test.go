package generator

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-pulse/internal/address"
	"token-pulse/internal/domain"
	"token-pulse/internal/idhash"
)

func TestGenerate_Deterministic(t *testing.T) {
	first, err := Generate(30)
	require.NoError(t, err)
	second, err := Generate(30)
	require.NoError(t, err)

	require.Len(t, first, 30)
	assert.True(t, reflect.DeepEqual(first, second), "two runs diverged")
	assert.Equal(t, idhash.UniverseDigest(first), idhash.UniverseDigest(second))
}

func TestGenerate_StatusCycle(t *testing.T) {
	records, err := Generate(3)
	require.NoError(t, err)

	want := []domain.Status{domain.StatusNewPairs, domain.StatusFinalStretch, domain.StatusMigrated}
	for i, r := range records {
		assert.Equal(t, want[i], r.Status, "record %d", i)
	}
}

func TestGenerate_PrefixStable(t *testing.T) {
	// Record i depends only on i, so a smaller universe is a prefix of a larger one.
	small, err := Generate(5)
	require.NoError(t, err)
	large, err := Generate(40)
	require.NoError(t, err)

	for i := range small {
		assert.Equal(t, small[i], large[i], "record %d", i)
	}
}

func TestGenerate_FieldInvariants(t *testing.T) {
	records, err := Generate(60)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, r := range records {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true

		assert.Len(t, r.ContractAddress, address.Length)
		assert.True(t, address.IsValid(r.ContractAddress), "invalid address %s", r.ContractAddress)
		assert.False(t, strings.ContainsAny(r.ContractAddress, "0OIl"))

		assert.Greater(t, r.Price, 0.0)
		assert.True(t, domain.IsKnownProtocol(r.Protocol), "unknown protocol %q", r.Protocol)
		assert.Len(t, r.History, domain.HistoryLimit)
		assert.True(t, strings.HasSuffix(r.TimeSinceCreation, "m"))

		assert.GreaterOrEqual(t, r.PriceChange24h, -20.0)
		assert.Less(t, r.PriceChange24h, 20.0)
		assert.GreaterOrEqual(t, r.PriceChange5m, -2.5)
		assert.Less(t, r.PriceChange5m, 2.5)
		assert.GreaterOrEqual(t, r.Security.Top10Holders, 0.0)
		assert.Less(t, r.Security.Top10Holders, 50.0)
	}
}

func TestGenerate_ZeroSeedPriceIsFloored(t *testing.T) {
	// sin(0) == 0, so record 0 draws a zero price.
	records, err := Generate(1)
	require.NoError(t, err)
	assert.Equal(t, domain.PriceFloor, records[0].Price)
}

func TestGenerate_InjectedFunc(t *testing.T) {
	constant := func(float64) float64 { return 0.5 }
	records, err := New(constant).Generate(2)
	require.NoError(t, err)

	r := records[1]
	assert.Equal(t, 5.0, r.Price)
	assert.Equal(t, 1_000_000.0, r.MarketCap)
	assert.Equal(t, int64(250), r.Transactions)
	assert.Equal(t, "30m", r.TimeSinceCreation)
	assert.Equal(t, domain.Protocols[6], r.Protocol)
	assert.True(t, r.Security.NoMint)
	assert.False(t, r.Security.HasAudit)
	assert.Equal(t, strings.Repeat(string(address.Alphabet[29]), address.Length), r.ContractAddress)
}

func TestGenerate_SeededFuncReturningOne(t *testing.T) {
	one := func(float64) float64 { return 1.0 }
	records, err := New(one).Generate(1)
	require.NoError(t, err)
	assert.Equal(t, domain.Protocols[len(domain.Protocols)-1], records[0].Protocol)
}

func TestGenerate_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Generate(n)
		if !errors.Is(err, domain.ErrInvalidUniverseSize) {
			t.Errorf("Generate(%d) err = %v, want ErrInvalidUniverseSize", n, err)
		}
	}
}

func TestSinSeeded_Range(t *testing.T) {
	for seed := -500.0; seed < 500; seed += 0.37 {
		v := SinSeeded(seed)
		if v < 0 || v >= 1 {
			t.Fatalf("SinSeeded(%v) = %v out of [0,1)", seed, v)
		}
	}
}
