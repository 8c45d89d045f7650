package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultTimeout bounds a single chat-completion call.
const DefaultTimeout = 120 * time.Second

// CompletionRequest is one single-turn prompt sent to a model.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completion is the text a model returned.
type Completion struct {
	Content    string
	TokensUsed int
}

// Completer is the provider abstraction interface.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Name() string
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Known provider names.
const (
	OpenRouter = "openrouter"
	OpenAI     = "openai"
	Anthropic  = "anthropic"
	Ollama     = "ollama"
	LMStudio   = "lmstudio"
)

// Names lists the supported providers.
var Names = []string{OpenRouter, OpenAI, Anthropic, Ollama, LMStudio}

type providerDefaults struct {
	model     string
	baseURL   string
	apiKeyEnv string
	keyless   bool
}

var defaults = map[string]providerDefaults{
	OpenRouter: {model: "gpt-4o-mini", baseURL: "https://openrouter.ai/api/v1/chat/completions", apiKeyEnv: "OPENROUTER_API_KEY"},
	OpenAI:     {model: "gpt-4o-mini", baseURL: "https://api.openai.com/v1/chat/completions", apiKeyEnv: "OPENAI_API_KEY"},
	Anthropic:  {model: "claude-3-5-haiku-latest", baseURL: "https://api.anthropic.com/v1/messages", apiKeyEnv: "ANTHROPIC_API_KEY"},
	Ollama:     {model: "llama3", baseURL: "http://localhost:11434", apiKeyEnv: "OLLAMA_API_KEY", keyless: true},
	LMStudio:   {model: "local-model", baseURL: "http://localhost:1234", apiKeyEnv: "LMSTUDIO_API_KEY", keyless: true},
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	return defaults[normalize(provider)].model
}

// DefaultBaseURL returns the endpoint used when none is configured.
func DefaultBaseURL(provider string) string {
	return defaults[normalize(provider)].baseURL
}

// APIKeyEnv returns the environment variable holding the provider's key.
func APIKeyEnv(provider string) string {
	return defaults[normalize(provider)].apiKeyEnv
}

// Known reports whether provider names a supported provider.
func Known(provider string) bool {
	_, ok := defaults[normalize(provider)]
	return ok
}

func normalize(provider string) string {
	p := strings.ToLower(strings.TrimSpace(provider))
	if p == "" {
		return OpenRouter
	}
	return p
}

// New creates a provider from settings. Missing fields fall back to the
// provider's defaults; the API key falls back to its environment variable.
func New(s Settings) (Completer, error) {
	name := normalize(s.Provider)
	d, ok := defaults[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", s.Provider)
	}

	model := s.Model
	if model == "" {
		model = d.model
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = d.baseURL
	}
	key := s.APIKey
	if key == "" {
		key = os.Getenv(d.apiKeyEnv)
	}
	if key == "" && !d.keyless {
		return nil, &MissingKeyError{Env: d.apiKeyEnv}
	}
	client := s.HTTPClient
	if client == nil {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	switch name {
	case Anthropic:
		return &AnthropicClient{apiKey: key, model: model, baseURL: baseURL, client: client}, nil
	case Ollama, LMStudio:
		return &ChatClient{name: name, apiKey: key, model: model, baseURL: localChatURL(baseURL), client: client}, nil
	default:
		return &ChatClient{name: name, apiKey: key, model: model, baseURL: baseURL, client: client}, nil
	}
}

// localChatURL accepts a bare host, a /v1 prefix or the full endpoint.
func localChatURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")
	return baseURL + "/v1/chat/completions"
}
