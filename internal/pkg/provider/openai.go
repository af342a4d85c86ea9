package provider

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

const openAIName = "openai"

// OpenAIConfig configures the OpenAI binding. BaseURL is only set in tests
// and for compatible gateways.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
}

type OpenAI struct {
	client      *openai.Client
	temperature float32
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAI{client: openai.NewClientWithConfig(oc), temperature: cfg.Temperature}
}

func (o *OpenAI) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: o.temperature,
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Debug("openai completion failed", "model", model, "err", err)
		return "", unavailable(openAIName, model, err)
	}
	text, ok := FirstText(openAIParts(resp))
	if !ok {
		return "", empty(openAIName, model)
	}
	return text, nil
}

func openAIParts(resp openai.ChatCompletionResponse) []Part {
	parts := make([]Part, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		msg := choice.Message
		switch {
		case msg.Content != "":
			parts = append(parts, Part{Kind: PartText, Text: msg.Content})
		case len(msg.ToolCalls) > 0:
			parts = append(parts, Part{Kind: PartToolUse, Text: msg.ToolCalls[0].Function.Name})
		case msg.Refusal != "":
			parts = append(parts, Part{Kind: PartOther, Text: msg.Refusal})
		default:
			parts = append(parts, Part{Kind: PartOther})
		}
	}
	return parts
}
