package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "trims and drops empties", in: []string{"  foo ", "", "  "}, want: []string{"foo"}},
		{name: "dedupes preserving order", in: []string{"b", "a", "b"}, want: []string{"b", "a"}},
		{name: "trimmed duplicates collapse", in: []string{"foo", " foo "}, want: []string{"foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}
