package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicName = "anthropic"

type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic builds the binding with SDK retries disabled; a failed call
// surfaces immediately.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	opts = append(opts, option.WithRequestTimeout(timeout))
	return &Anthropic{client: anthropic.NewClient(opts...)}
}

func (a *Anthropic) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		slog.Debug("anthropic message failed", "model", model, "err", err)
		return "", unavailable(anthropicName, model, err)
	}
	text, ok := FirstText(anthropicParts(resp))
	if !ok {
		return "", empty(anthropicName, model)
	}
	return text, nil
}

func anthropicParts(resp *anthropic.Message) []Part {
	parts := make([]Part, 0, len(resp.Content))
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			parts = append(parts, Part{Kind: PartText, Text: variant.Text})
		case anthropic.ThinkingBlock:
			parts = append(parts, Part{Kind: PartReasoning, Text: variant.Thinking})
		case anthropic.ToolUseBlock:
			parts = append(parts, Part{Kind: PartToolUse, Text: variant.Name})
		default:
			parts = append(parts, Part{Kind: PartOther})
		}
	}
	return parts
}
