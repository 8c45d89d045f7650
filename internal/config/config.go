package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dshills/codecritic/internal/providers"
)

const appName = "codecritic"

// Config represents the codecritic configuration.
type Config struct {
	Provider       string        `yaml:"provider" validate:"required,oneof=openrouter openai anthropic ollama lmstudio"`
	Model          string        `yaml:"model,omitempty"`
	BaseURL        string        `yaml:"baseURL,omitempty" validate:"omitempty,url"`
	APIKeyEnv      string        `yaml:"apiKeyEnv,omitempty"`
	Format         string        `yaml:"format" validate:"oneof=text markdown json yaml"`
	FailOn         string        `yaml:"failOn" validate:"oneof=none syntax any"`
	RulesFile      string        `yaml:"rulesFile,omitempty"`
	TimeoutSeconds int           `yaml:"timeoutSeconds" validate:"gt=0"`
	MaxTokens      int           `yaml:"maxTokens" validate:"gt=0"`
	Temperature    float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	LogLevel       string        `yaml:"logLevel" validate:"oneof=debug info warn error"`
	Tools          ToolsConfig   `yaml:"tools"`
	Privacy        PrivacyConfig `yaml:"privacy"`
	Cache          CacheConfig   `yaml:"cache"`
	Server         ServerConfig  `yaml:"server"`
}

// ToolsConfig locates the local checkers.
type ToolsConfig struct {
	Python               string `yaml:"python"`
	Pylint               string `yaml:"pylint"`
	Javac                string `yaml:"javac"`
	CXX                  string `yaml:"cxx"`
	TimeoutSeconds       int    `yaml:"timeoutSeconds" validate:"gt=0"`
	LanguageToolURL      string `yaml:"languageToolURL,omitempty" validate:"omitempty,url"`
	LanguageToolLanguage string `yaml:"languageToolLanguage"`
}

// PrivacyConfig controls redaction of submitted code before it leaves the
// machine.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty"`
}

// CacheConfig controls the model reply cache. It is off by default.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds" validate:"gte=0"`
}

// ServerConfig controls `codecritic serve`.
type ServerConfig struct {
	Addr           string   `yaml:"addr" validate:"required"`
	// AllowedOrigins lists browser origins allowed to call the API. Empty
	// means same-origin only; "*" opts into any origin.
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	MaxBodyBytes   int64    `yaml:"maxBodyBytes" validate:"gt=0"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:       providers.OpenRouter,
		Format:         "text",
		FailOn:         "none",
		TimeoutSeconds: int(providers.DefaultTimeout / time.Second),
		MaxTokens:      2500,
		Temperature:    0.1,
		LogLevel:       "warn",
		Tools: ToolsConfig{
			Python:               "python3",
			Pylint:               "pylint",
			Javac:                "javac",
			CXX:                  "g++",
			TimeoutSeconds:       20,
			LanguageToolURL:      "http://localhost:8081/v2/check",
			LanguageToolLanguage: "en-US",
		},
		Privacy: PrivacyConfig{
			RedactPaths: []string{"**/.env", "**/*secrets*"},
		},
		Cache: CacheConfig{
			TTLSeconds: 86400,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			MaxBodyBytes: 1 << 20,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for codecritic.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", appName), nil
	default:
		return filepath.Join(home, ".config", appName), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
// The result is validated.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", field, fmt.Sprint(fe.Value()))
	case "gt", "gte", "lte":
		return fmt.Sprintf("%s must be %s %s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// ToolTimeout is the per-invocation budget for local tools.
func (c Config) ToolTimeout() time.Duration {
	return time.Duration(c.Tools.TimeoutSeconds) * time.Second
}

// RemoteTimeout is the wall-clock budget for the model call.
func (c Config) RemoteTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// KeyEnv names the environment variable that holds the API key.
func (c Config) KeyEnv() string {
	if c.APIKeyEnv != "" {
		return c.APIKeyEnv
	}
	return providers.APIKeyEnv(c.Provider)
}

// APIKey reads the credential from the environment. It is never stored in
// the config file.
func (c Config) APIKey() string {
	env := c.KeyEnv()
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

// ProviderSettings converts the config to provider settings.
func (c Config) ProviderSettings() providers.Settings {
	return providers.Settings{
		Provider: c.Provider,
		Model:    c.Model,
		BaseURL:  c.BaseURL,
		APIKey:   c.APIKey(),
		Timeout:  c.RemoteTimeout(),
	}
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.APIKeyEnv != "" {
		dst.APIKeyEnv = src.APIKeyEnv
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	if src.RulesFile != "" {
		dst.RulesFile = src.RulesFile
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	// A zero temperature is indistinguishable from unset; deterministic
	// sampling is requested with a tiny positive value instead.
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Tools.Python != "" {
		dst.Tools.Python = src.Tools.Python
	}
	if src.Tools.Pylint != "" {
		dst.Tools.Pylint = src.Tools.Pylint
	}
	if src.Tools.Javac != "" {
		dst.Tools.Javac = src.Tools.Javac
	}
	if src.Tools.CXX != "" {
		dst.Tools.CXX = src.Tools.CXX
	}
	if src.Tools.TimeoutSeconds > 0 {
		dst.Tools.TimeoutSeconds = src.Tools.TimeoutSeconds
	}
	if src.Tools.LanguageToolURL != "" {
		dst.Tools.LanguageToolURL = src.Tools.LanguageToolURL
	}
	if src.Tools.LanguageToolLanguage != "" {
		dst.Tools.LanguageToolLanguage = src.Tools.LanguageToolLanguage
	}
	// Redaction defaults to off, so a true in the file always wins.
	dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets || dst.Privacy.RedactSecrets
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	if src.Server.MaxBodyBytes > 0 {
		dst.Server.MaxBodyBytes = src.Server.MaxBodyBytes
	}
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("CODECRITIC_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CODECRITIC_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CODECRITIC_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("CODECRITIC_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("CODECRITIC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CODECRITIC_LANGUAGETOOL_URL"); v != "" {
		cfg.Tools.LanguageToolURL = v
	}
	if v := os.Getenv("CODECRITIC_TOOL_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CODECRITIC_TOOL_TIMEOUT must be an integer: %w", err)
		}
		cfg.Tools.TimeoutSeconds = n
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the names accepted by SetField.
var Keys = []string{
	"provider", "model", "baseURL", "apiKeyEnv", "format", "failOn",
	"rulesFile", "timeoutSeconds", "maxTokens", "temperature", "logLevel",
	"tools.python", "tools.pylint", "tools.javac", "tools.cxx", "tools.timeoutSeconds",
	"tools.languageToolURL", "tools.languageToolLanguage",
	"privacy.redactSecrets", "cache.enabled", "cache.dir", "cache.ttlSeconds",
	"server.addr",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "baseURL":
		cfg.BaseURL = value
	case "apiKeyEnv":
		cfg.APIKeyEnv = value
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "rulesFile":
		cfg.RulesFile = value
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "logLevel":
		cfg.LogLevel = value
	case "tools.python":
		cfg.Tools.Python = value
	case "tools.pylint":
		cfg.Tools.Pylint = value
	case "tools.javac":
		cfg.Tools.Javac = value
	case "tools.cxx":
		cfg.Tools.CXX = value
	case "tools.timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("tools.timeoutSeconds must be an integer: %w", err)
		}
		cfg.Tools.TimeoutSeconds = n
	case "tools.languageToolURL":
		cfg.Tools.LanguageToolURL = value
	case "tools.languageToolLanguage":
		cfg.Tools.LanguageToolLanguage = value
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "server.addr":
		cfg.Server.Addr = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
