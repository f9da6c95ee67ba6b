package constants

import "strings"

// Provider is the canonical identifier of a generative-text backend.
type Provider string

// Stable values (store these exact strings in config and logs).
const (
	ProviderDeepSeek Provider = "deepseek"
	ProviderGemini   Provider = "google_gemini"
	ProviderOpenAI   Provider = "openai"
	ProviderLMStudio Provider = "lm_studio"
)

// DefaultProvider is used whenever a provider is absent or unrecognized.
const DefaultProvider = ProviderDeepSeek

// providerAliases maps loosely-written provider names onto canonical values.
// Model-shaped names ("gpt-4o", "gemini-pro") count as provider hints because
// upstream configs routinely conflate the two.
var providerAliases = map[string]Provider{
	"deepseek":       ProviderDeepSeek,
	"deepseek-chat":  ProviderDeepSeek,
	"google_gemini":  ProviderGemini,
	"google-gemini":  ProviderGemini,
	"gemini":         ProviderGemini,
	"gemini-pro":     ProviderGemini,
	"gemini 1.5 pro": ProviderGemini,
	"openai":         ProviderOpenAI,
	"gpt":            ProviderOpenAI,
	"gpt-4":          ProviderOpenAI,
	"gpt4":           ProviderOpenAI,
	"gpt-4o":         ProviderOpenAI,
	"gpt-4o-mini":    ProviderOpenAI,
	"lmstudio":       ProviderLMStudio,
	"lm_studio":      ProviderLMStudio,
	"lm-studio":      ProviderLMStudio,
}

// defaultModels is the hard-coded last-resort model per provider.
var defaultModels = map[Provider]string{
	ProviderDeepSeek: "deepseek-chat",
	ProviderGemini:   "gemini-2.5-flash",
	ProviderOpenAI:   "gpt-4o-mini",
	ProviderLMStudio: "local-model",
}

// NormalizeProvider maps any spelling onto a canonical provider. Unknown
// inputs fall back to DefaultProvider; normalization is idempotent.
func NormalizeProvider(input string) Provider {
	key := strings.ToLower(strings.TrimSpace(input))
	if key == "" {
		return DefaultProvider
	}
	if p, ok := providerAliases[key]; ok {
		return p
	}
	if _, ok := defaultModels[Provider(key)]; ok {
		return Provider(key)
	}
	return DefaultProvider
}

// KnownProvider reports whether input normalizes without falling back.
func KnownProvider(input string) bool {
	key := strings.ToLower(strings.TrimSpace(input))
	if _, ok := providerAliases[key]; ok {
		return true
	}
	_, ok := defaultModels[Provider(key)]
	return ok
}

// DefaultModel returns the hard-coded default model for a provider.
func DefaultModel(p Provider) string {
	if m, ok := defaultModels[p]; ok {
		return m
	}
	return defaultModels[DefaultProvider]
}

// Sampling defaults. Temperature is fixed low to bias the extraction toward
// determinism; token ceilings differ per use case (a conversational
// appointment reply is short, a full invoice transcription is not).
const (
	DefaultTemperature      float32 = 0.2
	MaxTokensAppointment            = 1200
	MaxTokensInvoice                = 8192
	DefaultLMStudioBaseURL          = "http://localhost:1234/v1"
	DefaultDeepSeekBaseURL          = "https://api.deepseek.com/v1"
)
