package config

// Config holds litmind configuration.
// Loaded from ./config.yaml or ~/.litmind/config.yaml.
type Config struct {
	Server  ServerCfg  `mapstructure:"server" yaml:"server"`
	Catalog CatalogCfg `mapstructure:"catalog" yaml:"catalog"`
	Gateway GatewayCfg `mapstructure:"gateway" yaml:"gateway"`
	Imagen  ImagenCfg  `mapstructure:"imagen" yaml:"imagen"`
	Speech  SpeechCfg  `mapstructure:"speech" yaml:"speech"`
	Auth    AuthCfg    `mapstructure:"auth" yaml:"auth"`
	Reader  ReaderCfg  `mapstructure:"reader" yaml:"reader"`
}

// ServerCfg holds HTTP server settings.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// CatalogCfg configures the public book catalog client.
type CatalogCfg struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// GatewayCfg configures the AI gateway used for translation and chat.
type GatewayCfg struct {
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model          string  `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per minute
}

// ImagenCfg configures scene-image prompt and image generation.
type ImagenCfg struct {
	PromptBaseURL string `mapstructure:"prompt_base_url" yaml:"prompt_base_url"`
	PromptModel   string `mapstructure:"prompt_model" yaml:"prompt_model"`
	PromptAPIKey  string `mapstructure:"prompt_api_key" yaml:"prompt_api_key"` // supports ${ENV_VAR} syntax
	ImageBaseURL  string `mapstructure:"image_base_url" yaml:"image_base_url"`
	ImageModel    string `mapstructure:"image_model" yaml:"image_model"`
	ImageAPIKey   string `mapstructure:"image_api_key" yaml:"image_api_key"` // supports ${ENV_VAR} syntax
}

// SpeechCfg configures the text-to-speech engine used by the CLI reader.
type SpeechCfg struct {
	Provider string  `mapstructure:"provider" yaml:"provider"` // "openai" or "none"
	APIKey   string  `mapstructure:"api_key" yaml:"api_key"`   // supports ${ENV_VAR} syntax
	Model    string  `mapstructure:"model" yaml:"model"`
	Voice    string  `mapstructure:"voice" yaml:"voice"`
	Speed    float64 `mapstructure:"speed" yaml:"speed"`
}

// AuthCfg configures bearer-token verification.
type AuthCfg struct {
	Domain   string `mapstructure:"domain" yaml:"domain"`     // identity provider domain
	Audience string `mapstructure:"audience" yaml:"audience"` // expected token audience
}

// ReaderCfg holds reading-session settings.
type ReaderCfg struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"` // characters per page
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Catalog: CatalogCfg{
			BaseURL:        "https://www.googleapis.com/books/v1",
			APIKey:         "${GOOGLE_BOOKS_API_KEY}",
			TimeoutSeconds: 30,
		},
		Gateway: GatewayCfg{
			BaseURL:        "https://openrouter.ai/api/v1",
			APIKey:         "${LITMIND_GATEWAY_API_KEY}",
			Model:          "google/gemini-2.5-flash",
			TimeoutSeconds: 120,
			MaxRetries:     3,
			RateLimit:      150,
		},
		Imagen: ImagenCfg{
			PromptBaseURL: "https://generativelanguage.googleapis.com/v1beta",
			PromptModel:   "gemini-2.0-flash-exp",
			PromptAPIKey:  "${GEMINI_API_KEY}",
			ImageBaseURL:  "https://openrouter.ai/api/v1",
			ImageModel:    "black-forest-labs/flux-1.1-pro",
			ImageAPIKey:   "${LITMIND_GATEWAY_API_KEY}",
		},
		Speech: SpeechCfg{
			Provider: "openai",
			APIKey:   "${OPENAI_API_KEY}",
			Model:    "tts-1",
			Voice:    "onyx",
			Speed:    0.9,
		},
		Auth: AuthCfg{
			Domain:   "${AUTH_DOMAIN}",
			Audience: "${AUTH_AUDIENCE}",
		},
		Reader: ReaderCfg{
			PageSize: 2000,
		},
	}
}
