// Package dto provides the request and response bodies of the local agent API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/piivault/internal/validation"
)

const (
	// MaxSessionIDLength and MaxChallengeLength bound the session credentials.
	MaxSessionIDLength = 256
	MaxChallengeLength = 1024

	// MaxBatchTexts bounds the number of texts in one detokenize request.
	MaxBatchTexts = 1000
)

// OpenSessionRequest carries the credentials the session key is derived from.
type OpenSessionRequest struct {
	SessionID string `json:"session_id"`
	Challenge string `json:"challenge"`
}

// Validate checks presence and maximum length only; the session provider owns the
// credential format.
func (r *OpenSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, MaxSessionIDLength),
		),
		validation.Field(&r.Challenge,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, MaxChallengeLength),
		),
	)
}

// StoreTokensRequest is a token map as delivered by the upstream service.
type StoreTokensRequest struct {
	Tokens map[string]string `json:"tokens"`
}

// Validate checks that the map is non-empty and well-formed.
func (r *StoreTokensRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Tokens,
			validation.Required,
			customValidation.TokenMap,
		),
	)
}

// DetokenizeRequest carries either one text or a list of texts, never both.
type DetokenizeRequest struct {
	Text     *string  `json:"text"`
	Texts    []string `json:"texts"`
	Detailed bool     `json:"detailed"`
}

// Validate checks that exactly one of text or texts is set.
func (r *DetokenizeRequest) Validate() error {
	if (r.Text == nil) == (r.Texts == nil) {
		return validation.Errors{
			"text": validation.NewError("validation_text_or_texts", "exactly one of text or texts is required"),
		}
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Texts,
			validation.Length(0, MaxBatchTexts),
		),
	)
}

// IsBatch reports whether the request carries a list of texts.
func (r *DetokenizeRequest) IsBatch() bool {
	return r.Texts != nil
}
