package provider

import (
	"context"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tallerhub/docpipe/constants"
)

// openaiCompatClient serves every backend that speaks the OpenAI chat
// completions protocol: OpenAI itself, DeepSeek, and LM Studio.
type openaiCompatClient struct {
	logger *slog.Logger
}

func (c *openaiCompatClient) complete(ctx context.Context, cfg Config, req Request) (string, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	ccr := openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Temperature: constants.DefaultTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.MaxTokens > 0 {
		ccr.MaxTokens = req.MaxTokens
	}
	// Local models often choke on response_format, so only the hosted
	// backends get the JSON mode hint.
	if cfg.Provider == constants.ProviderOpenAI || cfg.Provider == constants.ProviderDeepSeek {
		ccr.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return "", classifyOpenAIErr(string(cfg.Provider), err)
	}
	if len(resp.Choices) == 0 {
		return "", &TransportError{Provider: string(cfg.Provider), Cause: errNoChoices}
	}
	return resp.Choices[0].Message.Content, nil
}
