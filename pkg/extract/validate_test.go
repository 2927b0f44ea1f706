package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	cases := []struct {
		word string
		want bool
	}{
		{"hello", true},
		{"Hello", true}, // case-folded before checks
		{"ab", true},    // shortest allowed
		{strings.Repeat("a", 45), true}, // longest allowed
		{"", false},
		{"a", false},
		{strings.Repeat("a", 46), false},
		{"the", false},     // stoplist
		{"YOU", false},     // stoplist after folding
		{"okay", false},    // stoplist
		{"don't", false},   // non-letter
		{"hello1", false},  // digit
		{"héllo", false},   // non-ASCII letter
		{"  trim  ", true}, // whitespace trimmed first
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsValid(tc.word), "word %q", tc.word)
	}
}

func TestStoplistSize(t *testing.T) {
	// The table is a fixed set of basic function words, on the order of
	// 40-60 entries.
	assert.GreaterOrEqual(t, len(stoplist), 40)
	assert.LessOrEqual(t, len(stoplist), 80)
}
