package claims

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_FirstValue(t *testing.T) {
	set := NewSet(
		Claim{Name: Subject, Value: "auth0|123"},
		Claim{Name: "roles", Value: "admin"},
		Claim{Name: "roles", Value: "editor"},
	)

	t.Run("returns the first match", func(t *testing.T) {
		value, ok := set.FirstValue("roles")
		require.True(t, ok)
		assert.Equal(t, "admin", value)
	})

	t.Run("missing claim is absent, not an error", func(t *testing.T) {
		value, ok := set.FirstValue(Email)
		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("nil set is empty", func(t *testing.T) {
		var nilSet *Set
		value, ok := nilSet.FirstValue(Subject)
		assert.False(t, ok)
		assert.Empty(t, value)
		assert.Zero(t, nilSet.Len())
		assert.Nil(t, nilSet.All())
	})
}

func TestSet_Values(t *testing.T) {
	set := NewSet(
		Claim{Name: "roles", Value: "admin"},
		Claim{Name: Subject, Value: "auth0|123"},
		Claim{Name: "roles", Value: "editor"},
	)

	assert.Equal(t, []string{"admin", "editor"}, set.Values("roles"))
	assert.Nil(t, set.Values(Email))
}

func TestSet_PreservesOrderAndIsImmutable(t *testing.T) {
	input := []Claim{
		{Name: Issuer, Value: "https://issuer.example.com/"},
		{Name: Subject, Value: "auth0|123"},
	}

	set := NewSet(input...)

	// Mutating the caller's slice must not reach the set.
	input[1].Value = "mutated"
	value, ok := set.FirstValue(Subject)
	require.True(t, ok)
	assert.Equal(t, "auth0|123", value)

	// Mutating the returned copy must not reach the set either.
	all := set.All()
	require.Len(t, all, 2)
	assert.Equal(t, Issuer, all[0].Name)
	assert.Equal(t, Subject, all[1].Name)
	all[0].Value = "mutated"

	again := set.All()
	assert.Equal(t, "https://issuer.example.com/", again[0].Value)
}

func TestSet_AllIsRestartable(t *testing.T) {
	set := NewSet(Claim{Name: Subject, Value: "auth0|123"})

	first := set.All()
	second := set.All()
	assert.Equal(t, first, second)
}

func TestContext_RoundTrip(t *testing.T) {
	set := NewSet(Claim{Name: Subject, Value: "auth0|123"})

	ctx := NewContext(context.Background(), set)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, set, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
