package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIEngineName    = "openai"
	openAIDefaultModel  = openai.SpeechModelTTS1
	openAIDefaultVoice  = "onyx"
	openAIDefaultSpeed  = 0.9
	openAIDefaultExpiry = 300 * time.Second
)

// OpenAIConfig holds configuration for the OpenAI speech engine.
type OpenAIConfig struct {
	APIKey     string
	Model      string  // "tts-1" (default), "tts-1-hd", "gpt-4o-mini-tts"
	Voice      string  // "onyx" (default)
	Speed      float64 // 0.25-4.0, default 0.9
	OutputDir  string  // where synthesized audio files are written
	Timeout    time.Duration
	BaseURL    string       // Optional (tests)
	HTTPClient *http.Client // Optional (tests)
}

// OpenAIEngine implements Engine using the official OpenAI SDK. The
// synthesized audio is written to a file in OutputDir; playback time is
// approximated from the text length so page-turn pacing behaves like a
// real utterance.
type OpenAIEngine struct {
	apiKey    string
	model     string
	voice     string
	speed     float64
	outputDir string
	client    openai.Client
}

// NewOpenAIEngine creates a new OpenAI speech engine.
func NewOpenAIEngine(cfg OpenAIConfig) *OpenAIEngine {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = openAIDefaultVoice
	}
	if cfg.Speed <= 0 {
		cfg.Speed = openAIDefaultSpeed
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = openAIDefaultExpiry
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.TempDir()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIEngine{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		voice:     cfg.Voice,
		speed:     cfg.Speed,
		outputDir: cfg.OutputDir,
		client:    openai.NewClient(opts...),
	}
}

// Name returns the engine identifier.
func (e *OpenAIEngine) Name() string { return OpenAIEngineName }

// Available reports whether the engine has an API key.
func (e *OpenAIEngine) Available() bool { return e.apiKey != "" }

// Speak synthesizes the utterance to an mp3 file and blocks for the
// estimated spoken duration, honoring cancellation throughout.
func (e *OpenAIEngine) Speak(ctx context.Context, u Utterance) error {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return fmt.Errorf("text is required")
	}

	speed := e.speed
	if u.Rate > 0 {
		speed = u.Rate
	}

	params := openai.AudioSpeechNewParams{
		Model:          e.model,
		Voice:          openai.AudioSpeechNewParamsVoice(e.voice),
		Input:          text,
		Speed:          openai.Float(speed),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}

	resp, err := e.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	outPath := filepath.Join(e.outputDir, fmt.Sprintf("utterance-%d.mp3", time.Now().UnixNano()))
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create audio file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close audio file: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(estimateDuration(text, speed)):
		return nil
	}
}

// estimateDuration approximates spoken length at ~15 characters/second.
func estimateDuration(text string, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	seconds := float64(len(text)) / (15.0 * speed)
	return time.Duration(seconds * float64(time.Second))
}
