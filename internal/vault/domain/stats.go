package domain

// Stats holds aggregate vault counters. It never carries token identifiers or values.
type Stats struct {
	TokenCount int64 `json:"token_count"`
	CacheSize  int   `json:"cache_size"`
	IsReady    bool  `json:"is_ready"`
}

// DetokenizationResult reports which tokens a rewrite found, resolved and left in place.
// Only token identifiers are listed; resolved values appear solely in Text.
type DetokenizationResult struct {
	Text           string   `json:"text"`
	TokensFound    []string `json:"tokens_found"`
	TokensResolved []string `json:"tokens_resolved"`
	TokensMissing  []string `json:"tokens_missing"`
}
