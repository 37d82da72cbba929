package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadingKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "verbatim upper", in: "FICTION", want: "FICTION"},
		{name: "lower folded", in: "fiction", want: "FICTION"},
		{name: "ampersand folded", in: "ANTIQUES & COLLECTIBLES", want: "ANTIQUES AND COLLECTIBLES"},
		{name: "and spelled out", in: "Antiques and Collectibles", want: "ANTIQUES AND COLLECTIBLES"},
		{name: "whitespace collapsed", in: "  BODY,  MIND   & SPIRIT ", want: "BODY, MIND AND SPIRIT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, HeadingKey(tc.in))
		})
	}
}

func TestCodePattern(t *testing.T) {
	t.Parallel()

	assert.True(t, CodePattern.MatchString("ANT007000"))
	assert.True(t, CodePattern.MatchString("FIC001000"))
	assert.False(t, CodePattern.MatchString("ant007000"))
	assert.False(t, CodePattern.MatchString("ANT07000"))
	assert.False(t, CodePattern.MatchString("ANT0070001"))
	assert.False(t, CodePattern.MatchString("ANT007000 General"))
}
