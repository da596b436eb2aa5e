package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/internal/assist"
	"github.com/haragam22/litmind/internal/svcctx"
)

// ChatRequest is the request body for the reading assistant.
type ChatRequest struct {
	Messages    []assist.ChatMessage `json:"messages"`
	BookTitle   string               `json:"bookTitle,omitempty"`
	BookContext string               `json:"bookContext,omitempty"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Reply string `json:"message"`
}

// ChatEndpoint handles POST /api/chat.
type ChatEndpoint struct{}

func (e *ChatEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/chat", e.handler
}

func (e *ChatEndpoint) RequiresServices() bool { return true }

// handler godoc
//
//	@Summary		Chat with the reading assistant
//	@Description	Send a conversation to the assistant, optionally grounded in the current book
//	@Tags			assist
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ChatRequest	true	"Chat request"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/chat [post]
func (e *ChatEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	reply, err := svcctx.AssistantFrom(r.Context()).Chat(r.Context(), req.Messages, req.BookTitle, req.BookContext)
	if err != nil {
		svcctx.LoggerFrom(r.Context()).Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

func (e *ChatEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the reading assistant a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := ChatRequest{
				Messages:  []assist.ChatMessage{{Role: "user", Content: args[0]}},
				BookTitle: title,
			}
			var resp ChatResponse
			if err := client.Post(cmd.Context(), "/api/chat", req, &resp); err != nil {
				return err
			}
			fmt.Println(resp.Reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "book", "", "Book title for context")
	return cmd
}
