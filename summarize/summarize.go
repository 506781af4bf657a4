// Package summarize renders the summarization prompt and sends it to a
// hosted generative model.
//
// The Client is built once at process start from a Config and shared by
// all requests; it holds no per-request state.
//
// Usage:
//
//	c, err := summarize.New(ctx, summarize.Config{APIKey: key})
//	summary, err := c.Summarize(ctx, text)
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Fallback is returned when the model produced no text.
const Fallback = "Unable to generate summary."

// Provider names a model API dialect.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Model generates a completion for a fully rendered prompt. An empty
// string with a nil error means the model produced no text.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Config configures the summarization client.
type Config struct {
	// Provider selects the API dialect (default: gemini).
	Provider Provider `json:"provider" yaml:"provider"`

	// APIKey is the model credential. Required.
	APIKey string `json:"-" yaml:"api_key"`

	// BaseURL overrides the provider endpoint (optional for gemini,
	// required for openai-compatible servers other than api.openai.com).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIVersion is the Gemini API version path segment. Empty means the
	// SDK default without a BaseURL, and no version segment with one.
	APIVersion string `json:"api_version" yaml:"api_version"`

	// Model is the model identifier (default: gemini-2.5-flash for gemini,
	// gpt-4o-mini for openai).
	Model string `json:"model" yaml:"model"`

	// Timeout bounds a single model call. Default: 60s.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Logger for debug/error messages. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if c.Model == "" {
		switch c.Provider {
		case ProviderOpenAI:
			c.Model = "gpt-4o-mini"
		default:
			c.Model = "gemini-2.5-flash"
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client summarizes text with a Model.
type Client struct {
	model   Model
	timeout time.Duration
	logger  *slog.Logger
}

// New builds the Client for cfg.Provider. A blank APIKey fails with
// ErrMissingCredential instead of deferring the failure to the first call.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cfg.defaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w (provider %s)", ErrMissingCredential, cfg.Provider)
	}

	var (
		m   Model
		err error
	)
	switch cfg.Provider {
	case ProviderGemini:
		m, err = newGeminiModel(ctx, cfg)
	case ProviderOpenAI:
		m, err = newOpenAIModel(cfg)
	default:
		return nil, fmt.Errorf("summarize: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewWithModel(cfg, m), nil
}

// NewWithModel wraps an existing Model.
func NewWithModel(cfg Config, m Model) *Client {
	cfg.defaults()
	return &Client{
		model:   m,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Summarize renders the prompt for content and returns the model's text,
// or Fallback when the model returned none. Failed calls return *Error.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	return c.Complete(ctx, BuildPrompt(content))
}

// Complete sends an already rendered prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.model.Generate(ctx, prompt)
	if err != nil {
		c.logger.Error("model call failed",
			"model", c.model.Name(),
			"duration", time.Since(start),
			"error", err)
		return "", &Error{Provider: c.model.Name(), Err: err}
	}

	c.logger.Debug("model call done",
		"model", c.model.Name(),
		"duration", time.Since(start),
		"prompt_chars", len(prompt),
		"summary_chars", len(text))

	if strings.TrimSpace(text) == "" {
		return Fallback, nil
	}
	return text, nil
}

// ModelName reports the configured model.
func (c *Client) ModelName() string { return c.model.Name() }
