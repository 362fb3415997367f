package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "SELLING Sofa", "selling sofa"},
		{"strips punctuation", "Selling sofa, call 555-1234!", "selling sofa call 5551234"},
		{"collapses whitespace", "selling \t sofa\n\ncall", "selling sofa call"},
		{"trims", "  selling sofa  ", "selling sofa"},
		{"keeps unicode letters", "Продаю диван, звоните!", "продаю диван звоните"},
		{"empty", "", ""},
		{"symbols only", "!!! ??? ...", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Selling sofa, call 555-1234!",
		"a - b - c",
		"  MIXED   Case\twith\nbreaks  ",
		"уже нормальный текст",
	}

	for _, in := range inputs {
		once := Normalize(in)
		require.Equal(t, once, Normalize(once), "input %q", in)
	}
}
