// Package client provides a unified chat client that selects a provider
// backend and retries transient failures. It is the entry point applications
// use; the per-provider packages under provider/ do the actual transport.
package client

import (
	"context"
	"fmt"
	"os"
	"strings"

	ai "github.com/bistrograph/bistrograph"
	"github.com/bistrograph/bistrograph/chat"
	"github.com/bistrograph/bistrograph/provider/anthropic"
	"github.com/bistrograph/bistrograph/provider/google"
	"github.com/bistrograph/bistrograph/provider/openai"
	"github.com/bistrograph/bistrograph/retry"
)

// Provider identifies a chat backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// ErrMissingAPIKey is returned when no API key is configured for the
// selected provider.
type ErrMissingAPIKey struct {
	Provider Provider
}

func (e *ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("client: no API key configured for %s", e.Provider)
}

// ErrUnknownProvider is returned for an unrecognized provider name.
type ErrUnknownProvider struct {
	Name string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("client: unknown provider %q", e.Name)
}

// Config holds configuration for creating a client.
type Config struct {
	// Provider selects the backend.
	Provider Provider

	// APIKey authenticates against the provider.
	APIKey string

	// Model overrides the provider's default chat model when non-empty.
	Model string

	// Retry configures retry behavior for transient errors.
	// Zero value uses retry.DefaultConfig().
	Retry retry.Config
}

// Client is a provider-backed chat client with retries.
type Client struct {
	backend  chat.Client
	provider Provider
	retryCfg retry.Config
}

// New creates a client for the configured provider.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &ErrMissingAPIKey{Provider: cfg.Provider}
	}

	var backend chat.Client
	switch cfg.Provider {
	case ProviderAnthropic:
		var opts []anthropic.ClientOption
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		backend = anthropic.New(cfg.APIKey, opts...)
	case ProviderOpenAI:
		var opts []openai.ClientOption
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		backend = openai.New(cfg.APIKey, opts...)
	case ProviderGoogle:
		var opts []google.ClientOption
		if cfg.Model != "" {
			opts = append(opts, google.WithModel(cfg.Model))
		}
		g, err := google.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		backend = g
	default:
		return nil, &ErrUnknownProvider{Name: string(cfg.Provider)}
	}

	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}

	return &Client{backend: backend, provider: cfg.Provider, retryCfg: retryCfg}, nil
}

// NewFromBackend wraps an existing chat client with retry behavior.
// Useful in tests and for custom transports.
func NewFromBackend(backend chat.Client, retryCfg retry.Config) *Client {
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}
	return &Client{backend: backend, retryCfg: retryCfg}
}

// Provider returns the configured backend provider.
func (c *Client) Provider() Provider { return c.provider }

// Chat sends a conversation and returns a complete response, retrying
// transient failures with exponential backoff.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	return retry.Do(ctx, c.retryCfg, func() (*ai.Response, error) {
		return c.backend.Chat(ctx, messages, opts...)
	})
}

// Env variable names for FromEnv.
const (
	EnvProvider     = "LLM_PROVIDER"
	EnvModel        = "LLM_MODEL"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGoogleKey    = "GOOGLE_API_KEY"
)

// FromEnv builds a client from environment variables. LLM_PROVIDER selects
// the backend explicitly; otherwise the first provider with an API key set
// wins, checked in the order anthropic, openai, google. LLM_MODEL overrides
// the default model.
func FromEnv(ctx context.Context) (*Client, error) {
	cfg := Config{Model: os.Getenv(EnvModel)}

	if name := strings.ToLower(os.Getenv(EnvProvider)); name != "" {
		cfg.Provider = Provider(name)
		switch cfg.Provider {
		case ProviderAnthropic:
			cfg.APIKey = os.Getenv(EnvAnthropicKey)
		case ProviderOpenAI:
			cfg.APIKey = os.Getenv(EnvOpenAIKey)
		case ProviderGoogle:
			cfg.APIKey = os.Getenv(EnvGoogleKey)
		default:
			return nil, &ErrUnknownProvider{Name: name}
		}
		return New(ctx, cfg)
	}

	switch {
	case os.Getenv(EnvAnthropicKey) != "":
		cfg.Provider = ProviderAnthropic
		cfg.APIKey = os.Getenv(EnvAnthropicKey)
	case os.Getenv(EnvOpenAIKey) != "":
		cfg.Provider = ProviderOpenAI
		cfg.APIKey = os.Getenv(EnvOpenAIKey)
	case os.Getenv(EnvGoogleKey) != "":
		cfg.Provider = ProviderGoogle
		cfg.APIKey = os.Getenv(EnvGoogleKey)
	default:
		return nil, &ErrMissingAPIKey{Provider: ProviderAnthropic}
	}
	return New(ctx, cfg)
}
