package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/internal/imagen"
	"github.com/haragam22/litmind/internal/svcctx"
)

// PromptRequest asks for an image prompt describing a page of text.
type PromptRequest struct {
	Text string `json:"text"`
	Page int    `json:"pageNumber"`
}

// PromptResponse carries the generated image prompt.
type PromptResponse struct {
	Prompt string `json:"imagePrompt"`
}

// SceneRequest asks for a rendered scene image from a prompt.
type SceneRequest struct {
	Prompt string `json:"prompt"`
}

// SceneResponse carries the rendered image URL.
type SceneResponse struct {
	ImageURL string `json:"imageUrl"`
}

// PromptEndpoint handles POST /api/image-prompts.
type PromptEndpoint struct{}

func (e *PromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/image-prompts", e.handler
}

func (e *PromptEndpoint) RequiresServices() bool { return true }

// handler godoc
//
//	@Summary		Generate an image prompt for a page
//	@Description	Produce a concise visual-scene prompt from page text
//	@Tags			scene
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PromptRequest	true	"Prompt request"
//	@Success		200		{object}	PromptResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/image-prompts [post]
func (e *PromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	prompt, err := svcctx.ImagenFrom(r.Context()).GeneratePrompt(r.Context(), req.Text, req.Page)
	if err != nil {
		if errors.Is(err, imagen.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "image prompt backend is not configured")
			return
		}
		svcctx.LoggerFrom(r.Context()).Error("prompt generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PromptResponse{Prompt: prompt})
}

func (e *PromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil
}

// SceneEndpoint handles POST /api/scene-image.
type SceneEndpoint struct{}

func (e *SceneEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/scene-image", e.handler
}

func (e *SceneEndpoint) RequiresServices() bool { return true }

// handler godoc
//
//	@Summary		Render a scene image
//	@Description	Render an image from a previously generated prompt
//	@Tags			scene
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SceneRequest	true	"Scene request"
//	@Success		200		{object}	SceneResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/scene-image [post]
func (e *SceneEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	url, err := svcctx.ImagenFrom(r.Context()).GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, imagen.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "image backend is not configured")
			return
		}
		svcctx.LoggerFrom(r.Context()).Error("image generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SceneResponse{ImageURL: url})
}

func (e *SceneEndpoint) Command(getServerURL func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene [prompt]",
		Short: "Render a scene image from a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SceneResponse
			if err := client.Post(cmd.Context(), "/api/scene-image", SceneRequest{Prompt: args[0]}, &resp); err != nil {
				return err
			}
			fmt.Println(resp.ImageURL)
			return nil
		},
	}
	return cmd
}
