package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTierFromScore(t *testing.T) {
	testCases := []struct {
		score int
		want  Tier
	}{
		{300, TierBronze},
		{579, TierBronze},
		{580, TierSilver},
		{669, TierSilver},
		{670, TierGold},
		{739, TierGold},
		{740, TierPlatinum},
		{850, TierPlatinum},
	}

	for _, tc := range testCases {
		if got := TierFromScore(tc.score); got != tc.want {
			t.Errorf("TierFromScore(%d) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestPointsToNextTier(t *testing.T) {
	points, ok := PointsToNextTier(560)
	require.True(t, ok)
	require.Equal(t, 20, points)

	points, ok = PointsToNextTier(700)
	require.True(t, ok)
	require.Equal(t, 40, points)

	_, ok = PointsToNextTier(800)
	require.False(t, ok)
}

func TestTierAtLeast(t *testing.T) {
	require.True(t, TierGold.AtLeast(TierSilver))
	require.True(t, TierGold.AtLeast(TierGold))
	require.False(t, TierSilver.AtLeast(TierGold))
	require.True(t, TierPlatinum.AtLeast(TierBronze))
	require.False(t, TierBronze.AtLeast(TierSilver))
}
