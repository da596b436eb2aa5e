package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/internal/auth"
	"github.com/haragam22/litmind/internal/svcctx"
)

// VerifyResponse reports the result of token verification.
type VerifyResponse struct {
	OK      bool           `json:"ok"`
	Payload map[string]any `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// VerifyEndpoint handles GET /api/verify.
type VerifyEndpoint struct{}

func (e *VerifyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/verify", e.handler
}

func (e *VerifyEndpoint) RequiresServices() bool { return true }

// handler godoc
//
//	@Summary		Verify a bearer token
//	@Description	Validate the Authorization bearer token against the configured identity provider
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	VerifyResponse
//	@Failure		401	{object}	VerifyResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/verify [get]
func (e *VerifyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	verifier := svcctx.VerifierFrom(r.Context())

	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeJSON(w, http.StatusUnauthorized, VerifyResponse{OK: false, Error: "missing bearer token"})
		return
	}

	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "token verification is not configured")
			return
		}
		writeJSON(w, http.StatusUnauthorized, VerifyResponse{OK: false, Error: "invalid token"})
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{OK: true, Payload: claims})
}

func (e *VerifyEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a bearer token against the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token is required")
			}
			client := api.NewClient(getServerURL())
			client.SetBearerToken(token)
			var resp VerifyResponse
			if err := client.Get(cmd.Context(), "/api/verify", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token to verify")
	return cmd
}
