package provider

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/genai"

	"github.com/tallerhub/docpipe/constants"
)

var errNoChoices = errors.New("model returned no choices")

type geminiClient struct {
	logger *slog.Logger
}

func (c *geminiClient) complete(ctx context.Context, cfg Config, req Request) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", classifyGeminiErr(string(cfg.Provider), err)
	}

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	temp := constants.DefaultTemperature
	genCfg.Temperature = &temp

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.User}},
		},
	}
	resp, err := client.Models.GenerateContent(ctx, cfg.Model, contents, genCfg)
	if err != nil {
		return "", classifyGeminiErr(string(cfg.Provider), err)
	}
	text := resp.Text()
	if text == "" {
		return "", &TransportError{Provider: string(cfg.Provider), Cause: errNoChoices}
	}
	return text, nil
}
