// Package svcctx provides service context for dependency injection via
// context. This package is separate from server to avoid import cycles
// with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/haragam22/litmind/internal/assist"
	"github.com/haragam22/litmind/internal/auth"
	"github.com/haragam22/litmind/internal/catalog"
	"github.com/haragam22/litmind/internal/imagen"
	"github.com/haragam22/litmind/internal/reader"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Catalog    *catalog.Client
	Fetcher    *reader.Fetcher
	Translator *assist.Translator
	Assistant  *assist.Assistant
	Imagen     *imagen.Client
	Verifier   *auth.Verifier
	Logger     *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// CatalogFrom extracts the catalog client from context.
func CatalogFrom(ctx context.Context) *catalog.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.Catalog
	}
	return nil
}

// FetcherFrom extracts the document fetcher from context.
func FetcherFrom(ctx context.Context) *reader.Fetcher {
	if s := ServicesFrom(ctx); s != nil {
		return s.Fetcher
	}
	return nil
}

// TranslatorFrom extracts the translator from context.
func TranslatorFrom(ctx context.Context) *assist.Translator {
	if s := ServicesFrom(ctx); s != nil {
		return s.Translator
	}
	return nil
}

// AssistantFrom extracts the chat assistant from context.
func AssistantFrom(ctx context.Context) *assist.Assistant {
	if s := ServicesFrom(ctx); s != nil {
		return s.Assistant
	}
	return nil
}

// ImagenFrom extracts the scene-image client from context.
func ImagenFrom(ctx context.Context) *imagen.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.Imagen
	}
	return nil
}

// VerifierFrom extracts the token verifier from context.
func VerifierFrom(ctx context.Context) *auth.Verifier {
	if s := ServicesFrom(ctx); s != nil {
		return s.Verifier
	}
	return nil
}

// LoggerFrom extracts the logger from context, falling back to the
// default logger when services are absent.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
