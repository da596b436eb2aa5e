package endpoints

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/internal/assist"
	"github.com/haragam22/litmind/internal/auth"
	"github.com/haragam22/litmind/internal/catalog"
	"github.com/haragam22/litmind/internal/gateway"
	"github.com/haragam22/litmind/internal/imagen"
	"github.com/haragam22/litmind/internal/reader"
	"github.com/haragam22/litmind/internal/svcctx"
)

// newTestHandler registers every endpoint on a mux with the given
// service set injected into each request context.
func newTestHandler(t *testing.T, svcs *svcctx.Services) http.Handler {
	t.Helper()
	if svcs.Logger == nil {
		svcs.Logger = slog.Default()
	}

	registry := api.NewRegistry()
	for _, ep := range All() {
		registry.Register(ep)
	}
	mux := http.NewServeMux()
	registry.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc { return next })

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), svcs)))
	})
}

// chatBackend serves an OpenAI-style chat completion with fixed content.
func chatBackend(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"id":    "r1",
			"model": "m",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func gatewayClient(t *testing.T, backend *httptest.Server) *gateway.Client {
	t.Helper()
	return gateway.New(gateway.Config{
		APIKey:     "test-key",
		BaseURL:    backend.URL,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestHandler(t, &svcctx.Services{})

	t.Run("health", func(t *testing.T) {
		rec := doJSON(t, handler, "GET", "/health", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if resp := decode[HealthResponse](t, rec); resp.Status != "ok" {
			t.Errorf("Status = %q", resp.Status)
		}
	})

	t.Run("ready with services", func(t *testing.T) {
		rec := doJSON(t, handler, "GET", "/ready", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("ready degraded without services", func(t *testing.T) {
		registry := api.NewRegistry()
		for _, ep := range All() {
			registry.Register(ep)
		}
		mux := http.NewServeMux()
		registry.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc { return next })

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/ready", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if resp := decode[HealthResponse](t, rec); resp.Status != "degraded" {
			t.Errorf("Status = %q", resp.Status)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := doJSON(t, handler, "GET", "/nope", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestStatusEndpoint(t *testing.T) {
	backend := chatBackend(t, "x", http.StatusOK)
	handler := newTestHandler(t, &svcctx.Services{
		Translator: assist.NewTranslator(gatewayClient(t, backend), nil),
		Imagen:     imagen.New(imagen.Config{PromptAPIKey: "pk"}),
		Verifier:   auth.NewVerifier(auth.Config{}),
	})

	rec := doJSON(t, handler, "GET", "/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[StatusResponse](t, rec)
	if !resp.Boundaries.Gateway {
		t.Error("Gateway = false, want configured")
	}
	if !resp.Boundaries.Prompt || resp.Boundaries.Image {
		t.Errorf("boundaries = %+v, want prompt only", resp.Boundaries)
	}
	if resp.Boundaries.Auth {
		t.Error("Auth = true, want unconfigured")
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("missing query", func(t *testing.T) {
		handler := newTestHandler(t, &svcctx.Services{})
		rec := doJSON(t, handler, "GET", "/api/catalog/search", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("returns shaped books", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"totalItems":1,"items":[{"id":"v1","volumeInfo":{"title":"Dune"}}]}`))
		}))
		t.Cleanup(backend.Close)

		handler := newTestHandler(t, &svcctx.Services{
			Catalog: catalog.New(catalog.Config{BaseURL: backend.URL}),
		})
		rec := doJSON(t, handler, "GET", "/api/catalog/search?q=dune", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		resp := decode[SearchResponse](t, rec)
		if len(resp.Books) != 1 || resp.Books[0].Title != "Dune" {
			t.Errorf("books = %+v", resp.Books)
		}
	})

	t.Run("catalog failure maps to 502", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(backend.Close)

		handler := newTestHandler(t, &svcctx.Services{
			Catalog: catalog.New(catalog.Config{BaseURL: backend.URL}),
		})
		rec := doJSON(t, handler, "GET", "/api/catalog/search?q=dune", nil)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})
}

func TestVolumeEndpoint(t *testing.T) {
	t.Run("composes the document", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"v1","volumeInfo":{"title":"Dune","authors":["Frank Herbert"],"description":"sand"}}`))
		}))
		t.Cleanup(backend.Close)

		cat := catalog.New(catalog.Config{BaseURL: backend.URL})
		handler := newTestHandler(t, &svcctx.Services{
			Fetcher: reader.NewFetcher(cat, 2000, nil),
		})

		rec := doJSON(t, handler, "GET", "/api/catalog/volumes/v1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		doc := decode[reader.Document](t, rec)
		if doc.PageCount() == 0 || !strings.Contains(doc.RawText, "# Dune") {
			t.Errorf("document = %+v", doc)
		}
	})

	t.Run("fetch failure degrades to fallback seeded from query", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(backend.Close)

		cat := catalog.New(catalog.Config{BaseURL: backend.URL})
		handler := newTestHandler(t, &svcctx.Services{
			Fetcher: reader.NewFetcher(cat, 2000, nil),
		})

		rec := doJSON(t, handler, "GET", "/api/catalog/volumes/v1?title=Dune&author=Frank+Herbert&description=sand", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, failures must still return a document", rec.Code)
		}
		doc := decode[reader.Document](t, rec)
		if doc.PageCount() != 1 {
			t.Fatalf("PageCount = %d, want 1", doc.PageCount())
		}
		for _, want := range []string{"# Dune", "by Frank Herbert", "Content preview is not available."} {
			if !strings.Contains(doc.Pages[0], want) {
				t.Errorf("fallback page missing %q: %q", want, doc.Pages[0])
			}
		}
	})
}

func TestTranslateEndpoint(t *testing.T) {
	t.Run("translates", func(t *testing.T) {
		backend := chatBackend(t, "bonjour", http.StatusOK)
		handler := newTestHandler(t, &svcctx.Services{
			Translator: assist.NewTranslator(gatewayClient(t, backend), nil),
		})

		rec := doJSON(t, handler, "POST", "/api/translate", TranslateRequest{Text: "hello", TargetLanguage: "fr"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if resp := decode[TranslateResponse](t, rec); resp.TranslatedText != "bonjour" {
			t.Errorf("TranslatedText = %q", resp.TranslatedText)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := newTestHandler(t, &svcctx.Services{})
		rec := doJSON(t, handler, "POST", "/api/translate", TranslateRequest{Text: "hello"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("gateway failure maps to 500", func(t *testing.T) {
		backend := chatBackend(t, "", http.StatusUnauthorized)
		handler := newTestHandler(t, &svcctx.Services{
			Translator: assist.NewTranslator(gatewayClient(t, backend), nil),
		})

		rec := doJSON(t, handler, "POST", "/api/translate", TranslateRequest{Text: "hello", TargetLanguage: "fr"})
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestChatEndpoint(t *testing.T) {
	t.Run("answers", func(t *testing.T) {
		backend := chatBackend(t, "Fear is the mind-killer.", http.StatusOK)
		handler := newTestHandler(t, &svcctx.Services{
			Assistant: assist.NewAssistant(gatewayClient(t, backend), nil),
		})

		rec := doJSON(t, handler, "POST", "/api/chat", ChatRequest{
			Messages:  []assist.ChatMessage{{Role: "user", Content: "What is the litany?"}},
			BookTitle: "Dune",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if resp := decode[ChatResponse](t, rec); resp.Reply != "Fear is the mind-killer." {
			t.Errorf("Reply = %q", resp.Reply)
		}
		// The reply travels on the wire as "message".
		if raw := decode[map[string]any](t, rec); raw["message"] != "Fear is the mind-killer." {
			t.Errorf("wire body = %v, want message field", raw)
		}
	})

	t.Run("empty history", func(t *testing.T) {
		handler := newTestHandler(t, &svcctx.Services{})
		rec := doJSON(t, handler, "POST", "/api/chat", ChatRequest{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestSceneEndpoints(t *testing.T) {
	t.Run("prompt generation", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]string{{"text": `{"image_prompt":"a dune at dusk"}`}}}},
				},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		t.Cleanup(backend.Close)

		handler := newTestHandler(t, &svcctx.Services{
			Imagen: imagen.New(imagen.Config{PromptBaseURL: backend.URL, PromptAPIKey: "pk"}),
		})
		rec := doJSON(t, handler, "POST", "/api/image-prompts", PromptRequest{Text: "The dunes stretched on.", Page: 1})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if resp := decode[PromptResponse](t, rec); resp.Prompt != "a dune at dusk" {
			t.Errorf("Prompt = %q", resp.Prompt)
		}
	})

	t.Run("prompt backend unconfigured maps to 503", func(t *testing.T) {
		handler := newTestHandler(t, &svcctx.Services{Imagen: imagen.New(imagen.Config{})})
		rec := doJSON(t, handler, "POST", "/api/image-prompts", PromptRequest{Text: "x"})
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("image generation", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[{"url":"http://cdn/scene.png"}]}`))
		}))
		t.Cleanup(backend.Close)

		handler := newTestHandler(t, &svcctx.Services{
			Imagen: imagen.New(imagen.Config{ImageBaseURL: backend.URL, ImageAPIKey: "ik"}),
		})
		rec := doJSON(t, handler, "POST", "/api/scene-image", SceneRequest{Prompt: "a dune at dusk"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if resp := decode[SceneResponse](t, rec); resp.ImageURL != "http://cdn/scene.png" {
			t.Errorf("ImageURL = %q", resp.ImageURL)
		}
	})

	t.Run("empty prompt", func(t *testing.T) {
		handler := newTestHandler(t, &svcctx.Services{})
		rec := doJSON(t, handler, "POST", "/api/scene-image", SceneRequest{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestVerifyEndpoint(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := map[string]any{
			"keys": []map[string]string{{
				"kid": "k1",
				"kty": "RSA",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
			}},
		}
		json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(jwks.Close)

	verifier := auth.NewVerifier(auth.Config{
		Domain:   "tenant.auth.example.com",
		Audience: "litmind-api",
		JWKSURL:  jwks.URL,
	})
	handler := newTestHandler(t, &svcctx.Services{Verifier: verifier})

	signToken := func(t *testing.T) string {
		t.Helper()
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"iss": "https://tenant.auth.example.com/",
			"aud": "litmind-api",
			"sub": "user|42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		token.Header["kid"] = "k1"
		raw, err := token.SignedString(key)
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/verify", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		resp := decode[VerifyResponse](t, rec)
		if !resp.OK || resp.Payload["sub"] != "user|42" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		rec := doJSON(t, handler, "GET", "/api/verify", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if resp := decode[VerifyResponse](t, rec); resp.OK || resp.Error == "" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/verify", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if resp := decode[VerifyResponse](t, rec); resp.OK {
			t.Error("OK = true for invalid token")
		}
	})

	t.Run("unconfigured verifier maps to 503", func(t *testing.T) {
		bare := newTestHandler(t, &svcctx.Services{Verifier: auth.NewVerifier(auth.Config{})})
		req := httptest.NewRequest("GET", "/api/verify", nil)
		req.Header.Set("Authorization", "Bearer anything")
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}
