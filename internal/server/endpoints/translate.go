package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/internal/svcctx"
)

// TranslateRequest is the request body for translation.
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

// TranslateResponse is the translation response.
type TranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// TranslateEndpoint handles POST /api/translate.
type TranslateEndpoint struct{}

func (e *TranslateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/translate", e.handler
}

func (e *TranslateEndpoint) RequiresServices() bool { return true }

// handler godoc
//
//	@Summary		Translate page text
//	@Description	Translate text to the target language, preserving formatting
//	@Tags			assist
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TranslateRequest	true	"Translation request"
//	@Success		200		{object}	TranslateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/translate [post]
func (e *TranslateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "text and targetLanguage are required")
		return
	}

	translated, err := svcctx.TranslatorFrom(r.Context()).Translate(r.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		svcctx.LoggerFrom(r.Context()).Error("translation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{TranslatedText: translated})
}

func (e *TranslateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate text from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if lang == "" {
				return fmt.Errorf("--lang is required")
			}
			text, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp TranslateResponse
			req := TranslateRequest{Text: string(text), TargetLanguage: lang}
			if err := client.Post(cmd.Context(), "/api/translate", req, &resp); err != nil {
				return err
			}
			fmt.Println(resp.TranslatedText)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Target language code (e.g. fr)")
	return cmd
}
