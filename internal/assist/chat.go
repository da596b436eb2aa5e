package assist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haragam22/litmind/internal/gateway"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant answers questions about the book the user is reading.
type Assistant struct {
	gw     *gateway.Client
	logger *slog.Logger
}

// NewAssistant creates a chat assistant over the given gateway client.
func NewAssistant(gw *gateway.Client, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{gw: gw, logger: logger}
}

// Chat runs one assistant turn. The persona is fixed to a reading
// assistant scoped to the given book; bookContext optionally seeds the
// conversation with a passage the user selected.
func (a *Assistant) Chat(ctx context.Context, messages []ChatMessage, bookTitle, bookContext string) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("at least one message is required")
	}

	systemPrompt := fmt.Sprintf(`You are a helpful reading assistant for the book %q.
Your role is to:
- Explain complex concepts and passages
- Provide summaries when asked
- Answer questions about the book content
- Help readers understand context and meaning
- Keep responses clear, concise, and educational`, bookTitle)
	if bookContext != "" {
		systemPrompt += fmt.Sprintf("\n\nHere's some context from the book:\n%s", bookContext)
	}

	wireMessages := make([]gateway.Message, 0, len(messages)+1)
	wireMessages = append(wireMessages, gateway.Message{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		wireMessages = append(wireMessages, gateway.Message{Role: m.Role, Content: m.Content})
	}

	a.logger.Info("chat request", "message_count", len(messages), "book_title", bookTitle)

	result, err := a.gw.Chat(ctx, &gateway.ChatRequest{Messages: wireMessages})
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}

	a.logger.Info("chat response generated", "request_id", result.RequestID)
	return result.Content, nil
}
