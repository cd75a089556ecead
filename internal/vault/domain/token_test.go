package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{token: "TOKEN_abc123", want: true},
		{token: "TOKEN_A", want: true},
		{token: "TOKEN_0", want: true},
		{token: "TOKEN_", want: false},
		{token: "token_abc", want: false},
		{token: "TOKEN_abc-123", want: false},
		{token: "TOKEN_abc 123", want: false},
		{token: " TOKEN_abc", want: false},
		{token: "TOKEN_abc\n", want: false},
		{token: "xTOKEN_abc", want: false},
		{token: "TOKEN_äbc", want: false},
		{token: "", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidToken(tt.token), "token %q", tt.token)
	}
}

func TestTokenPattern(t *testing.T) {
	t.Run("greedy alphanumeric run", func(t *testing.T) {
		matches := TokenPattern().FindAllString("see TOKEN_abc123, TOKEN_x.TOKEN_Yz9!", -1)
		assert.Equal(t, []string{"TOKEN_abc123", "TOKEN_x", "TOKEN_Yz9"}, matches)
	})

	t.Run("case sensitive marker", func(t *testing.T) {
		assert.False(t, TokenPattern().MatchString("Token_abc token_abc"))
	})

	t.Run("bare marker is not a token", func(t *testing.T) {
		assert.False(t, TokenPattern().MatchString("TOKEN_ TOKEN_-1"))
	})
}

func TestIsTokenChar(t *testing.T) {
	for _, c := range []byte("azAZ09") {
		assert.True(t, IsTokenChar(c), "char %q", c)
	}
	for _, c := range []byte("_- .,\n\x00\xff") {
		assert.False(t, IsTokenChar(c), "char %q", c)
	}
}
