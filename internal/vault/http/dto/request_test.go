package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSessionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     OpenSessionRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  OpenSessionRequest{SessionID: "session-123", Challenge: "challenge-value-123456"},
		},
		{
			name:    "missing session id",
			req:     OpenSessionRequest{Challenge: "challenge-value-123456"},
			wantErr: "session_id",
		},
		{
			name:    "blank challenge",
			req:     OpenSessionRequest{SessionID: "session-123", Challenge: "   "},
			wantErr: "challenge",
		},
		{
			name:    "session id too long",
			req:     OpenSessionRequest{SessionID: strings.Repeat("s", MaxSessionIDLength+1), Challenge: "c"},
			wantErr: "session_id",
		},
		{
			name:    "challenge too long",
			req:     OpenSessionRequest{SessionID: "s", Challenge: strings.Repeat("c", MaxChallengeLength+1)},
			wantErr: "challenge",
		},
		{
			name: "short values are accepted",
			req:  OpenSessionRequest{SessionID: "s", Challenge: "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreTokensRequest_Validate(t *testing.T) {
	valid := StoreTokensRequest{Tokens: map[string]string{"TOKEN_abc123": "Alice"}}
	assert.NoError(t, valid.Validate())

	empty := StoreTokensRequest{Tokens: map[string]string{}}
	assert.Error(t, empty.Validate())

	missing := StoreTokensRequest{}
	assert.Error(t, missing.Validate())

	badKey := StoreTokensRequest{Tokens: map[string]string{"email": "alice@example.com"}}
	err := badKey.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tokens")
}

func TestDetokenizeRequest_Validate(t *testing.T) {
	text := "Hello TOKEN_abc123"

	single := DetokenizeRequest{Text: &text}
	assert.NoError(t, single.Validate())
	assert.False(t, single.IsBatch())

	batch := DetokenizeRequest{Texts: []string{text, "plain"}, Detailed: true}
	assert.NoError(t, batch.Validate())
	assert.True(t, batch.IsBatch())

	emptyBatch := DetokenizeRequest{Texts: []string{}}
	assert.NoError(t, emptyBatch.Validate())

	emptyText := ""
	assert.NoError(t, (&DetokenizeRequest{Text: &emptyText}).Validate())

	assert.Error(t, (&DetokenizeRequest{}).Validate())
	assert.Error(t, (&DetokenizeRequest{Text: &text, Texts: []string{text}}).Validate())
	assert.Error(t, (&DetokenizeRequest{Texts: make([]string, MaxBatchTexts+1)}).Validate())
}
