// Package domain defines the vault's core types: token identifiers, encrypted records,
// aggregate statistics and the vault error taxonomy.
package domain

import (
	"regexp"
)

// TokenPrefix is the fixed marker every token starts with.
const TokenPrefix = "TOKEN_"

// MaxValueSize is the largest plaintext value, in bytes, the vault accepts.
const MaxValueSize = 64 * 1024

var (
	tokenRegex       = regexp.MustCompile(`^TOKEN_[A-Za-z0-9]+$`)
	tokenSearchRegex = regexp.MustCompile(`TOKEN_[A-Za-z0-9]+`)
)

// IsValidToken reports whether token is exactly one well-formed token identifier.
func IsValidToken(token string) bool {
	return tokenRegex.MatchString(token)
}

// TokenPattern returns the unanchored pattern used to locate tokens inside text.
// Matching is greedy and case-sensitive. The returned regexp is safe for concurrent use.
func TokenPattern() *regexp.Regexp {
	return tokenSearchRegex
}

// IsTokenChar reports whether c may appear in the identifier run after TokenPrefix.
func IsTokenChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
