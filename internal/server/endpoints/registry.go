// Package endpoints defines all HTTP API endpoints for the Litmind
// server. Each endpoint implements api.Endpoint, pairing its route and
// handler with a matching CLI command.
package endpoints

import "github.com/haragam22/litmind/internal/api"

// All returns every endpoint the server exposes, in route order.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},
		&SearchEndpoint{},
		&VolumeEndpoint{},
		&TranslateEndpoint{},
		&ChatEndpoint{},
		&PromptEndpoint{},
		&SceneEndpoint{},
		&VerifyEndpoint{},
	}
}
