// Package summarizer produces short note summaries with the Anthropic
// Messages API. It fails open: every error yields an absent result.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// PlaceholderAPIKey is the value shipped in sample configuration. It is
// treated like a missing key.
const PlaceholderAPIKey = "YOUR_CLAUDE_API_KEY_HERE"

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 200

	promptTemplate = "Please provide a brief summary (2-3 sentences) of the following note:\n\nTitle: %s\n\nContent: %s"
)

// Config configures the summarization client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
}

// messageCreator is the part of anthropic.MessageService used here.
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Client calls the summarization API. A Client without credentials is
// disabled and always returns Absent.
type Client struct {
	messages  messageCreator
	model     string
	maxTokens int64
	logger    *slog.Logger
}

// New builds a Client. Requests are never retried.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.With("component", "summarizer"),
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}

	if cfg.APIKey == "" || cfg.APIKey == PlaceholderAPIKey {
		c.logger.Warn("Claude API key not configured - summarization disabled")
		return c
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	api := anthropic.NewClient(opts...)
	c.messages = &api.Messages
	c.logger.Info("Claude API client initialized", "model", c.model)
	return c
}

// Enabled reports whether the client will call the API.
func (c *Client) Enabled() bool {
	return c != nil && c.messages != nil
}

// Summarize asks the API for a summary of the note. It blocks for the
// duration of the call and returns Absent on any failure.
func (c *Client) Summarize(ctx context.Context, title, content string) (res Result) {
	if !c.Enabled() {
		return Absent()
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "summarization panicked", "panic", r)
			res = Absent()
		}
	}()

	msg, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(title, content))),
		},
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "summarization request failed", "error", err)
		return Absent()
	}
	if msg == nil {
		return Absent()
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		c.logger.WarnContext(ctx, "summarization returned no text")
		return Absent()
	}
	return Found(b.String())
}

// Prompt renders the fixed summarization prompt for a note.
func Prompt(title, content string) string {
	return fmt.Sprintf(promptTemplate, title, content)
}
