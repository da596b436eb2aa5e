package imagen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// promptSchema validates the structured output of the prompt model
// before the prompt is accepted for image generation.
var promptSchema = jsonschema.MustCompileString("image_prompt.json", `{
	"type": "object",
	"required": ["image_prompt"],
	"properties": {
		"image_prompt": {"type": "string", "minLength": 1}
	}
}`)

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

// geminiResponse is the generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeneratePrompt turns a page excerpt into a vivid image-generation
// prompt. The model is asked for structured JSON which is validated
// against promptSchema before the prompt is extracted.
func (c *Client) GeneratePrompt(ctx context.Context, text string, pageNumber int) (string, error) {
	if c.promptAPIKey == "" {
		return "", ErrNotConfigured
	}

	c.logger.Info("generating image prompt", "page", pageNumber)

	instruction := fmt.Sprintf("Based on this book excerpt, create a detailed, vivid image prompt "+
		"suitable for AI image generation. The prompt should capture the key visual elements, mood, "+
		"and atmosphere. Keep it under 100 words and focus on visual details. "+
		"Respond with JSON of the form {\"image_prompt\": \"...\"}:\n\n%s",
		excerpt(text, promptExcerptLimit))

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: instruction}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:      0.7,
			MaxOutputTokens:  200,
			ResponseMimeType: "application/json",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.promptBaseURL, c.promptModel, c.promptAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("prompt generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("prompt model error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("prompt model returned no candidates")
	}

	raw := strings.TrimSpace(gemResp.Candidates[0].Content.Parts[0].Text)
	prompt, err := extractPrompt(raw)
	if err != nil {
		return "", err
	}

	c.logger.Info("generated prompt", "page", pageNumber, "prompt_length", len(prompt))
	return prompt, nil
}

// extractPrompt parses and schema-validates the model's structured output.
func extractPrompt(raw string) (string, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", fmt.Errorf("prompt model returned invalid JSON: %w", err)
	}
	if err := promptSchema.Validate(doc); err != nil {
		return "", fmt.Errorf("prompt output failed schema validation: %w", err)
	}
	obj := doc.(map[string]any)
	return strings.TrimSpace(obj["image_prompt"].(string)), nil
}
