// Package llm wraps the external text generation service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"datamodeler/internal/metrics"
)

var ErrMissingAPIKey = errors.New("ANTHROPIC_API_KEY is not set")

// Generator turns a prompt into a completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	BaseURL   string
}

// AnthropicClient implements Generator using the Anthropic Messages API.
// It sends one request per call and never retries.
type AnthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	hasKey    bool
	logger    *slog.Logger
}

func NewAnthropicClient(cfg AnthropicConfig, logger *slog.Logger) *AnthropicClient {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
		hasKey:    cfg.APIKey != "",
		logger:    logger,
	}
}

// Generate returns the text of the completion, unmodified. A successful
// response without text blocks yields an empty string, not an error.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.hasKey {
		return "", ErrMissingAPIKey
	}

	start := time.Now()
	c.logger.Info("Anthropic API call starting", "model", c.model, "maxTokens", c.maxTokens, "promptLen", len(prompt))

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})

	duration := time.Since(start)
	metrics.RecordGeneration(duration, err)
	if err != nil {
		c.logger.Error("Anthropic API call failed", "duration", duration, "error", err)
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	c.logger.Info("Anthropic API call completed", "duration", duration, "stopReason", msg.StopReason)
	metrics.RecordGenerationTokens(msg.Usage.InputTokens, msg.Usage.OutputTokens)

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		c.logger.Warn("Anthropic API returned no text", "stopReason", msg.StopReason)
	}

	return text.String(), nil
}
