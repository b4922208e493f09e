package stringutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHead(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "abc", 10, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"zero", "abc", 0, ""},
		{"multibyte", "héllo wörld", 4, "héll"},
		{"emoji", "🐬🐬🐬", 2, "🐬🐬"},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Head(tt.in, tt.n))
		})
	}
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 0, RuneLen(""))
	assert.Equal(t, 5, RuneLen("héllo"))
	assert.Equal(t, 3, RuneLen("🐬🐬🐬"))
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "x", OrDefault("x", "y"))
	assert.Equal(t, "y", OrDefault("", "y"))
}
