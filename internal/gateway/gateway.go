// Package gateway implements the AI-gateway client behind translation,
// chat, and image-prompt generation.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned when the gateway API key is absent.
// Every request through an unconfigured gateway fails until the key is set.
var ErrNotConfigured = errors.New("gateway API key is not configured")

// Config holds configuration for the gateway client.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
	// Rate limiting
	RateLimit  float64       // Requests per minute (default: 150)
	MaxRetries int           // Max retry attempts (default: 3)
	RetryDelay time.Duration // Base delay between retries (default: 1s)

	HTTPClient *http.Client // Optional (tests)
	Logger     *slog.Logger
}

// Client calls an OpenAI-compatible chat completions gateway.
type Client struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
	limiter      *RateLimiter
	maxRetries   int
	retryDelay   time.Duration
	logger       *slog.Logger
}

// Message is a single chat message on the wire.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request to the gateway.
type ChatRequest struct {
	Messages    []Message
	Model       string // uses client default if empty
	Temperature float64
	MaxTokens   int
}

// ChatResult is the response from a gateway call.
type ChatResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	ModelUsed        string
	RequestID        string
	Attempts         int
}

// New creates a new gateway client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "google/gemini-2.5-flash"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 150
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		client:       httpClient,
		limiter:      NewRateLimiter(int(cfg.RateLimit)),
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		logger:       cfg.Logger,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Chat sends a chat completion request.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	requestID := uuid.NewString()
	wireReq := &wireRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	start := time.Now()
	wireResp, attempts, err := c.doRequest(ctx, "/chat/completions", wireReq)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{
		Content:          wireResp.Choices[0].Message.Content,
		PromptTokens:     wireResp.Usage.PromptTokens,
		CompletionTokens: wireResp.Usage.CompletionTokens,
		ModelUsed:        wireResp.Model,
		RequestID:        requestID,
		Attempts:         attempts,
	}

	c.logger.Debug("gateway chat complete",
		"request_id", requestID,
		"model", result.ModelUsed,
		"attempts", attempts,
		"duration", time.Since(start),
	)
	return result, nil
}
