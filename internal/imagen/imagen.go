// Package imagen generates an illustrative scene image for a page of
// book text. Generation is two sequential calls: page text to a
// descriptive prompt, then prompt to an image URL.
package imagen

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when a required API key is absent.
var ErrNotConfigured = errors.New("image generation API key is not configured")

// promptExcerptLimit caps how much page text is sent to the prompt model.
const promptExcerptLimit = 1000

// Config holds configuration for the imagen client.
type Config struct {
	// Prompt generation (Gemini-style generateContent API)
	PromptBaseURL string
	PromptModel   string
	PromptAPIKey  string

	// Image generation (OpenAI-style images API)
	ImageBaseURL string
	ImageModel   string
	ImageAPIKey  string

	Timeout    time.Duration
	HTTPClient *http.Client // Optional (tests)
	Logger     *slog.Logger
}

// Client generates scene prompts and images.
type Client struct {
	promptBaseURL string
	promptModel   string
	promptAPIKey  string

	imageBaseURL string
	imageModel   string
	imageAPIKey  string

	client *http.Client
	logger *slog.Logger
}

// New creates a new imagen client.
func New(cfg Config) *Client {
	if cfg.PromptBaseURL == "" {
		cfg.PromptBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.PromptModel == "" {
		cfg.PromptModel = "gemini-2.0-flash-exp"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "black-forest-labs/flux-1.1-pro"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		promptBaseURL: cfg.PromptBaseURL,
		promptModel:   cfg.PromptModel,
		promptAPIKey:  cfg.PromptAPIKey,
		imageBaseURL:  cfg.ImageBaseURL,
		imageModel:    cfg.ImageModel,
		imageAPIKey:   cfg.ImageAPIKey,
		client:        httpClient,
		logger:        cfg.Logger,
	}
}

// PromptConfigured reports whether prompt generation has an API key.
func (c *Client) PromptConfigured() bool { return c.promptAPIKey != "" }

// ImageConfigured reports whether image generation has an API key.
func (c *Client) ImageConfigured() bool { return c.imageAPIKey != "" }

// excerpt returns the first n runes of text.
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
