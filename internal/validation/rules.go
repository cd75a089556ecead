// Package validation provides request validation rules shared by the HTTP DTOs.
package validation

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/piivault/internal/errors"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Token validates that a string is exactly one well-formed token.
var Token = validation.NewStringRuleWithError(
	vaultDomain.IsValidToken,
	validation.NewError("validation_token_format", "must be a token of the form TOKEN_<alphanumeric>"),
)

// TokenMap validates a token-to-value map: every key must be a well-formed token and
// every value at most vaultDomain.MaxValueSize bytes. Offending keys are reported in
// sorted order; only the first one is named.
var TokenMap = validation.By(func(value any) error {
	m, ok := value.(map[string]string)
	if !ok {
		return validation.NewError("validation_token_map_type", "must be an object of token to string")
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !vaultDomain.IsValidToken(k) {
			return validation.NewError("validation_token_map_key",
				fmt.Sprintf("key %q is not a valid token", truncate(k, 64)))
		}
		if len(m[k]) > vaultDomain.MaxValueSize {
			return validation.NewError("validation_token_map_value",
				fmt.Sprintf("value for %s exceeds %d bytes", k, vaultDomain.MaxValueSize))
		}
	}
	return nil
})

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
