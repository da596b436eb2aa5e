package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haragam22/litmind/internal/gateway"
)

// Translator translates page text through the AI gateway.
type Translator struct {
	gw     *gateway.Client
	logger *slog.Logger
}

// NewTranslator creates a translator over the given gateway client.
func NewTranslator(gw *gateway.Client, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{gw: gw, logger: logger}
}

// Configured reports whether the underlying gateway has an API key.
func (t *Translator) Configured() bool {
	return t.gw.Configured()
}

// Translate translates text into the target language. Structural
// formatting markers in the input (markdown headers, bold, paragraph
// breaks) are preserved; only the translated text is returned.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if text == "" || targetLanguage == "" {
		return "", fmt.Errorf("text and target language are required")
	}

	targetName := LanguageName(targetLanguage)

	t.logger.Info("translation request",
		"text_length", len(text),
		"target_language", targetLanguage,
	)

	result, err := t.gw.Chat(ctx, &gateway.ChatRequest{
		Messages: []gateway.Message{
			{
				Role: "system",
				Content: fmt.Sprintf("You are a professional book translator. Translate the given text to %s. "+
					"Maintain all formatting including markdown syntax (# headers, ** bold, etc.), "+
					"paragraph breaks, and structure. Preserve the literary style and tone. "+
					"Only return the translated text, nothing else.", targetName),
			},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	translated := strings.TrimSpace(result.Content)
	t.logger.Info("translation successful", "output_length", len(translated))
	return translated, nil
}
