package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilarityIdentical(t *testing.T) {
	score := Similarity("selling blue sofa call 5551234", "selling blue sofa call 5551234")
	require.True(t, score.Computable)
	require.InDelta(t, 1.0, score.Value, 1e-9)
}

func TestSimilaritySymmetric(t *testing.T) {
	a := "selling comfortable blue sofa call 5551234 today"
	b := "selling comfortable blue sofa call 5551234 tomorrow"

	ab := Similarity(a, b)
	ba := Similarity(b, a)
	require.True(t, ab.Computable)
	require.True(t, ba.Computable)
	require.InDelta(t, ab.Value, ba.Value, 1e-9)
}

func TestSimilarityParaphraseAboveViolationThreshold(t *testing.T) {
	a := "selling comfortable blue sofa call 5551234 today"
	b := "selling comfortable blue sofa call 5551234 tomorrow"

	score := Similarity(a, b)
	require.True(t, score.Computable)
	require.GreaterOrEqual(t, score.Value, ViolationThreshold)
}

func TestSimilarityPartialOverlapInReviewBand(t *testing.T) {
	a := "selling wooden table nice condition call 5557788 today"
	b := "selling bicycle almost new nice condition call 5557788"

	score := Similarity(a, b)
	require.True(t, score.Computable)
	require.GreaterOrEqual(t, score.Value, ReviewThreshold)
	require.Less(t, score.Value, ViolationThreshold)
}

func TestSimilarityDisjoint(t *testing.T) {
	score := Similarity("selling blue sofa", "renting downtown apartment")
	require.True(t, score.Computable)
	require.InDelta(t, 0.0, score.Value, 1e-9)
}

func TestSimilarityNotComputable(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"both empty", "", ""},
		{"one empty", "selling blue sofa", ""},
		{"only short tokens", "a b c", "selling blue sofa"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score := Similarity(tc.a, tc.b)
			require.False(t, score.Computable)
			require.Zero(t, score.Value)
		})
	}
}
