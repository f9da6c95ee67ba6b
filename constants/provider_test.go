package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		input string
		want  Provider
	}{
		{"deepseek", ProviderDeepSeek},
		{"deepseek-chat", ProviderDeepSeek},
		{"DeepSeek", ProviderDeepSeek},
		{"  gemini  ", ProviderGemini},
		{"gemini-pro", ProviderGemini},
		{"google-gemini", ProviderGemini},
		{"gpt-4o", ProviderOpenAI},
		{"GPT4", ProviderOpenAI},
		{"lm-studio", ProviderLMStudio},
		{"lmstudio", ProviderLMStudio},
		{"", DefaultProvider},
		{"claude", DefaultProvider},
		{"some-unknown-model", DefaultProvider},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProvider(tt.input))
		})
	}
}

func TestNormalizeProviderIdempotent(t *testing.T) {
	for _, p := range []Provider{ProviderDeepSeek, ProviderGemini, ProviderOpenAI, ProviderLMStudio} {
		assert.Equal(t, p, NormalizeProvider(string(p)), "canonical value must normalize to itself")
	}
}

func TestKnownProvider(t *testing.T) {
	assert.True(t, KnownProvider("gemini"))
	assert.True(t, KnownProvider("lm_studio"))
	assert.False(t, KnownProvider("claude"))
	assert.False(t, KnownProvider(""))
}

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, "deepseek-chat", DefaultModel(ProviderDeepSeek))
	assert.Equal(t, "gemini-2.5-flash", DefaultModel(ProviderGemini))
	// Unknown providers get the default provider's model.
	assert.Equal(t, DefaultModel(DefaultProvider), DefaultModel(Provider("bogus")))
}
