package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("provider_test")
	require.NoError(t, err)
	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.Handler())

	t.Run("exposes runtime collectors", func(t *testing.T) {
		output := scrape(t, provider)
		assert.Contains(t, output, "go_goroutines")
	})

	t.Run("empty namespace", func(t *testing.T) {
		_, err := NewProvider("")
		assert.NoError(t, err)
	})
}

func TestProvider_Shutdown(t *testing.T) {
	provider, err := NewProvider("provider_test")
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))

	nilProvider := &Provider{}
	assert.NoError(t, nilProvider.Shutdown(context.Background()))
}
