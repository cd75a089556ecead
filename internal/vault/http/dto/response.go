package dto

import (
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// StoreTokensResponse reports how many tokens were stored.
type StoreTokensResponse struct {
	Stored int `json:"stored"`
}

// TokenExistsResponse reports token presence. It never carries the value.
type TokenExistsResponse struct {
	Exists bool `json:"exists"`
}

// StatsResponse mirrors vault statistics.
type StatsResponse struct {
	TokenCount int64 `json:"token_count"`
	CacheSize  int   `json:"cache_size"`
	IsReady    bool  `json:"is_ready"`
}

// MapStatsToResponse converts vault stats to the response body.
func MapStatsToResponse(stats vaultDomain.Stats) StatsResponse {
	return StatsResponse{
		TokenCount: stats.TokenCount,
		CacheSize:  stats.CacheSize,
		IsReady:    stats.IsReady,
	}
}

// DetokenizeTextResponse is the plain single-text result.
type DetokenizeTextResponse struct {
	Text string `json:"text"`
}

// DetokenizeTextsResponse is the plain batch result, in request order.
type DetokenizeTextsResponse struct {
	Texts []string `json:"texts"`
}

// DetokenizeResultsResponse is the detailed batch result, in request order.
type DetokenizeResultsResponse struct {
	Results []vaultDomain.DetokenizationResult `json:"results"`
}
