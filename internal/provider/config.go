package provider

import (
	"time"

	"github.com/tallerhub/docpipe/constants"
	"github.com/tallerhub/docpipe/internal/common"
)

// Config is everything a single call needs. It is fully resolved before
// the gateway sees it: no ambient environment reads happen past here.
type Config struct {
	Provider constants.Provider
	APIKey   string
	Model    string
	BaseURL  string
}

// Override is a per-request knob. Empty fields mean "use the default".
type Override struct {
	Provider string
	Model    string
}

// Resolver layers request overrides over configured defaults over the
// built-in fallbacks, in that order.
type Resolver struct {
	cfg common.ProviderConfig
}

func NewResolver(cfg common.ProviderConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve normalizes the requested provider alias, falling back to the
// configured process-wide provider, and fills in key, model and base URL
// for it. Per-provider fields win over the generic AI_* tier, which wins
// over the built-in defaults.
func (r *Resolver) Resolve(ov Override) Config {
	p := constants.NormalizeProvider(firstNonEmpty(ov.Provider, r.cfg.Name))
	out := Config{Provider: p}

	// The generic tier names a single provider; its key, model and URL
	// only apply when that provider is the one selected.
	var genKey, genModel, genURL string
	if r.cfg.Name != "" && p == constants.NormalizeProvider(r.cfg.Name) {
		genKey, genModel, genURL = r.cfg.APIKey, r.cfg.Model, r.cfg.BaseURL
	}

	switch p {
	case constants.ProviderDeepSeek:
		out.APIKey = firstNonEmpty(r.cfg.DeepSeekAPIKey, genKey)
		out.Model = firstNonEmpty(ov.Model, r.cfg.DeepSeekModel, genModel, constants.DefaultModel(p))
		out.BaseURL = firstNonEmpty(genURL, constants.DefaultDeepSeekBaseURL)
	case constants.ProviderGemini:
		out.APIKey = firstNonEmpty(r.cfg.GeminiAPIKey, genKey)
		out.Model = firstNonEmpty(ov.Model, r.cfg.GeminiModel, genModel, constants.DefaultModel(p))
	case constants.ProviderOpenAI:
		out.APIKey = firstNonEmpty(r.cfg.OpenAIAPIKey, genKey)
		out.Model = firstNonEmpty(ov.Model, r.cfg.OpenAIModel, genModel, constants.DefaultModel(p))
		out.BaseURL = genURL
	case constants.ProviderLMStudio:
		out.APIKey = firstNonEmpty(r.cfg.LMStudioAPIKey, genKey, "lm-studio")
		out.Model = firstNonEmpty(ov.Model, r.cfg.LMStudioModel, genModel, constants.DefaultModel(p))
		out.BaseURL = firstNonEmpty(r.cfg.LMStudioURL, genURL, constants.DefaultLMStudioBaseURL)
	}
	return out
}

// Timeout is the configured per-call deadline; zero means none.
func (r *Resolver) Timeout() time.Duration {
	return r.cfg.Timeout
}

// Validate reports a ConfigurationError if the resolved config cannot
// possibly work. LM Studio is local and needs no real key.
func (c Config) Validate() error {
	if c.Model == "" {
		return &ConfigurationError{Provider: string(c.Provider), Reason: "no model configured"}
	}
	if c.APIKey == "" && c.Provider != constants.ProviderLMStudio {
		return &ConfigurationError{Provider: string(c.Provider), Reason: "missing API key"}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
