package lattice

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegate_Involution(t *testing.T) {
	for _, x := range Values() {
		assert.Equal(t, x, Negate(Negate(x)), "negate(negate(%s))", x)
	}
	assert.Equal(t, F, Negate(T))
	assert.Equal(t, T, Negate(F))
	assert.Equal(t, B, Negate(B))
	assert.Equal(t, N, Negate(N))
}

func TestJoinMeet_Idempotent(t *testing.T) {
	for _, x := range Values() {
		assert.Equal(t, x, Join(x, x), "join(%s,%s)", x, x)
		assert.Equal(t, x, Meet(x, x), "meet(%s,%s)", x, x)
	}
}

func TestJoinMeet_Commutative(t *testing.T) {
	for _, a := range Values() {
		for _, b := range Values() {
			assert.Equal(t, Join(a, b), Join(b, a), "join(%s,%s)", a, b)
			assert.Equal(t, Meet(a, b), Meet(b, a), "meet(%s,%s)", a, b)
		}
	}
}

func TestJoin_Table(t *testing.T) {
	tests := []struct {
		a, b, want Value
	}{
		{T, F, B},
		{T, N, T},
		{F, N, F},
		{B, N, B},
		{B, T, B},
		{B, F, B},
		{N, N, N},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Join(tt.a, tt.b), "join(%s,%s)", tt.a, tt.b)
	}
}

func TestMeet_Table(t *testing.T) {
	tests := []struct {
		a, b, want Value
	}{
		{T, F, N},
		{B, T, T},
		{B, F, F},
		{B, B, B},
		{B, N, N},
		{T, N, N},
		{F, N, N},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Meet(tt.a, tt.b), "meet(%s,%s)", tt.a, tt.b)
	}
}

func TestJoinMeet_ClosedOverFourValues(t *testing.T) {
	for _, a := range Values() {
		for _, b := range Values() {
			assert.True(t, Join(a, b).Valid())
			assert.True(t, Meet(a, b).Valid())
			assert.True(t, Negate(a).Valid())
		}
	}
}

func TestJoinMeet_InvalidInputFallsBack(t *testing.T) {
	bogus := Value(42)
	assert.Equal(t, B, Join(bogus, T))
	assert.Equal(t, N, Meet(T, bogus))
}

func TestFromEvidence(t *testing.T) {
	for _, eps := range []float64{DefaultEpsilon, 0.01, 1} {
		assert.Equal(t, N, FromEvidence(0, 0, eps), "eps=%v", eps)
	}

	assert.Equal(t, T, FromEvidence(0.8, 0, DefaultEpsilon))
	assert.Equal(t, F, FromEvidence(0, 0.7, DefaultEpsilon))
	assert.Equal(t, B, FromEvidence(0.8, 0.7, DefaultEpsilon))

	// sums at the threshold do not count
	assert.Equal(t, N, FromEvidence(0.5, 0.5, 0.5))
	assert.Equal(t, T, FromEvidence(0.51, 0.5, 0.5))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "true", Label(T))
	assert.Equal(t, "false", Label(F))
	assert.Equal(t, "both/contradictory", Label(B))
	assert.Equal(t, "undetermined", Label(N))
}

func TestParse(t *testing.T) {
	for _, v := range Values() {
		got, err := Parse(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)

		got, err = Parse(Label(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := Parse("maybe")
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{"p": B})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"B"}`, string(data))

	var out map[string]Value
	require.NoError(t, json.Unmarshal([]byte(`{"p":"true"}`), &out))
	assert.Equal(t, T, out["p"])

	_, err = Value(9).MarshalText()
	assert.Error(t, err)
}
