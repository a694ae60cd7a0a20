package dice_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/srdcrawl/internal/dice"
	"github.com/cory-johannsen/srdcrawl/internal/parseerr"
)

func TestHitDieCount_KnownValues(t *testing.T) {
	cases := []struct {
		spec string
		want any
	}{
		{"4d8+2", 4},
		{"(1/2) + 1d4", 0.5},
		{"2d6", 2},
		{"4d8-4", 4},
		{"(1/2)d8", 0.5},
		{"(1/4)d8", 0.25},
		{"15d10+45 + 3d8+6", 18},
		{"12", 12},
	}
	for _, tc := range cases {
		t.Run(tc.spec, func(t *testing.T) {
			hd, err := dice.HitDieCount(tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, hd.Value())
		})
	}
}

func TestHitDieCount_Malformed(t *testing.T) {
	for _, spec := range []string{"abc", "", "(1/0)", "4d8 plus", "- 2"} {
		t.Run(spec, func(t *testing.T) {
			_, err := dice.HitDieCount(spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, parseerr.ErrMalformedRollSpec)
		})
	}
}

func TestHitDieCount_TooLarge(t *testing.T) {
	for _, spec := range []string{"99999999999999999999d8", "9223372036854775807d8 + 1d8"} {
		t.Run(spec, func(t *testing.T) {
			_, err := dice.HitDieCount(spec)
			assert.ErrorIs(t, err, parseerr.ErrMalformedRollSpec)
		})
	}

	h, err := dice.HitDieCount("4611686018427387904d8")
	require.NoError(t, err)
	assert.Equal(t, 4611686018427387904, h.Value())
}

func TestHitDice_Value(t *testing.T) {
	assert.Equal(t, 3, dice.HitDice(3).Value())
	assert.Equal(t, 1.5, dice.HitDice(1.5).Value())
	assert.True(t, dice.HitDice(2).IsWhole())
	assert.False(t, dice.HitDice(0.5).IsWhole())
}

// TestHitDieCount_BonusDiscarded verifies that NdS+M always counts N dice.
func TestHitDieCount_BonusDiscarded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 60).Draw(rt, "count")
		s := rapid.SampledFrom([]int{4, 6, 8, 10, 12, 20}).Draw(rt, "sides")
		m := rapid.IntRange(0, 200).Draw(rt, "modifier")
		sign := rapid.SampledFrom([]string{"+", "-"}).Draw(rt, "sign")

		hd, err := dice.HitDieCount(fmt.Sprintf("%dd%d%s%d", n, s, sign, m))
		require.NoError(rt, err)
		assert.Equal(rt, n, hd.Value())
	})
}

// TestHitDieCount_SumOfTwoTerms verifies that compound HD add their counts.
func TestHitDieCount_SumOfTwoTerms(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(1, 40).Draw(rt, "a")
		b := rapid.IntRange(1, 40).Draw(rt, "b")
		hd, err := dice.HitDieCount(fmt.Sprintf("%dd8 + %dd10+3", a, b))
		require.NoError(rt, err)
		assert.Equal(rt, a+b, hd.Value())
	})
}
