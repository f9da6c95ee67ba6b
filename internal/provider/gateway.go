// Package provider is the single boundary between the pipeline and the
// hosted LLMs. Callers hand it resolved prompts and get back the raw
// model text; everything provider-specific (SDKs, auth, base URLs,
// error taxonomy) stays inside.
package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallerhub/docpipe/constants"
)

// Request is a single completion call.
type Request struct {
	System    string
	User      string
	MaxTokens int
}

// Gateway dispatches requests to whichever backend the resolved config
// names. It is stateless and safe for concurrent use.
type Gateway struct {
	resolver *Resolver
	logger   *slog.Logger

	openaiCompat *openaiCompatClient
	gemini       *geminiClient
}

func NewGateway(resolver *Resolver, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		resolver:     resolver,
		logger:       logger,
		openaiCompat: &openaiCompatClient{logger: logger},
		gemini:       &geminiClient{logger: logger},
	}
}

// Invoke resolves ov, validates the resulting config, and performs one
// completion call. The returned string is the model's raw text output
// with no parsing applied.
func (g *Gateway) Invoke(ctx context.Context, req Request, ov Override) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if ov.Provider != "" && !constants.KnownProvider(ov.Provider) {
		g.logger.Warn("provider.unknown_alias",
			"req_id", rid, "requested", ov.Provider,
			"fallback", string(constants.DefaultProvider))
	}
	cfg := g.resolver.Resolve(ov)
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if t := g.resolver.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	g.logger.Info("provider.invoke.start",
		"req_id", rid,
		"provider", string(cfg.Provider),
		"model", cfg.Model,
		"system_len", len(req.System),
		"user_len", len(req.User),
	)

	var (
		text string
		err  error
	)
	switch cfg.Provider {
	case constants.ProviderGemini:
		text, err = g.gemini.complete(ctx, cfg, req)
	default:
		text, err = g.openaiCompat.complete(ctx, cfg, req)
	}

	if err != nil {
		g.logger.Error("provider.invoke.error",
			"req_id", rid,
			"provider", string(cfg.Provider),
			"error", err,
			"retryable", Retryable(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	g.logger.Info("provider.invoke.ok",
		"req_id", rid,
		"provider", string(cfg.Provider),
		"output_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
