package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "openrouter" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "openrouter")
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, want %q", cfg.Format, "text")
	}
	if cfg.FailOn != "none" {
		t.Errorf("FailOn = %q, want %q", cfg.FailOn, "none")
	}
	if cfg.TimeoutSeconds != 120 {
		t.Errorf("TimeoutSeconds = %d, want 120", cfg.TimeoutSeconds)
	}
	if cfg.MaxTokens != 2500 {
		t.Errorf("MaxTokens = %d, want 2500", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.1 {
		t.Errorf("Temperature = %v, want 0.1", cfg.Temperature)
	}
	if cfg.Tools.TimeoutSeconds != 20 {
		t.Errorf("Tools.TimeoutSeconds = %d, want 20", cfg.Tools.TimeoutSeconds)
	}
	if cfg.Privacy.RedactSecrets {
		t.Error("RedactSecrets should default to false")
	}
	if cfg.Cache.Enabled {
		t.Error("Cache should default to disabled")
	}
	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Errorf("Server.AllowedOrigins = %v, want none (same-origin only)", cfg.Server.AllowedOrigins)
	}
	if cfg.Tools.Python != "python3" {
		t.Errorf("Tools.Python = %q, want %q", cfg.Tools.Python, "python3")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	if cfg.ToolTimeout() != 20*time.Second {
		t.Errorf("ToolTimeout = %v, want 20s", cfg.ToolTimeout())
	}
	if cfg.RemoteTimeout() != 120*time.Second {
		t.Errorf("RemoteTimeout = %v, want 120s", cfg.RemoteTimeout())
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("CODECRITIC_PROVIDER", "openai")
	t.Setenv("CODECRITIC_MODEL", "gpt-4o")
	t.Setenv("CODECRITIC_FORMAT", "json")
	t.Setenv("CODECRITIC_TOOL_TIMEOUT", "5")
	t.Setenv("CODECRITIC_LANGUAGETOOL_URL", "http://lt.local/v2/check")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gpt-4o")
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.Tools.TimeoutSeconds != 5 {
		t.Errorf("Tools.TimeoutSeconds = %d, want 5", cfg.Tools.TimeoutSeconds)
	}
	if cfg.Tools.LanguageToolURL != "http://lt.local/v2/check" {
		t.Errorf("LanguageToolURL = %q", cfg.Tools.LanguageToolURL)
	}
}

func TestMergeEnv_BadTimeout(t *testing.T) {
	t.Setenv("CODECRITIC_TOOL_TIMEOUT", "soon")
	cfg := Default()
	if err := mergeEnv(&cfg); err == nil {
		t.Error("Expected error for non-integer CODECRITIC_TOOL_TIMEOUT")
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	err := mergeOverrides(&cfg, map[string]string{
		"provider":  "anthropic",
		"model":     "claude-3-5-haiku-latest",
		"failOn":    "syntax",
		"rulesFile": "rules.yaml",
		"baseURL":   "",
	})
	if err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.Model != "claude-3-5-haiku-latest" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.FailOn != "syntax" {
		t.Errorf("FailOn = %q, want %q", cfg.FailOn, "syntax")
	}
	if cfg.RulesFile != "rules.yaml" {
		t.Errorf("RulesFile = %q, want %q", cfg.RulesFile, "rules.yaml")
	}
	if cfg.BaseURL != "" {
		t.Errorf("empty override should be ignored, BaseURL = %q", cfg.BaseURL)
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	if err := mergeOverrides(&cfg, nil); err != nil {
		t.Fatalf("mergeOverrides(nil) error: %v", err)
	}
	if cfg.Provider != "openrouter" {
		t.Errorf("Provider changed with nil overrides: %q", cfg.Provider)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()
	tests := []struct {
		key, value string
		check      func() bool
	}{
		{"provider", "ollama", func() bool { return cfg.Provider == "ollama" }},
		{"maxTokens", "4000", func() bool { return cfg.MaxTokens == 4000 }},
		{"temperature", "0.7", func() bool { return cfg.Temperature == 0.7 }},
		{"tools.cxx", "clang++", func() bool { return cfg.Tools.CXX == "clang++" }},
		{"tools.timeoutSeconds", "9", func() bool { return cfg.Tools.TimeoutSeconds == 9 }},
		{"privacy.redactSecrets", "true", func() bool { return cfg.Privacy.RedactSecrets }},
		{"server.addr", ":9000", func() bool { return cfg.Server.Addr == ":9000" }},
	}
	for _, tt := range tests {
		if err := SetField(&cfg, tt.key, tt.value); err != nil {
			t.Errorf("SetField(%q) error: %v", tt.key, err)
			continue
		}
		if !tt.check() {
			t.Errorf("SetField(%q, %q) did not apply", tt.key, tt.value)
		}
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	err := SetField(&cfg, "unknown", "value")
	if err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestSetField_InvalidInt(t *testing.T) {
	cfg := Default()
	err := SetField(&cfg, "maxTokens", "not-a-number")
	if err == nil {
		t.Error("Expected error for non-integer value")
	}
}

func TestSetField_KeysAreAccepted(t *testing.T) {
	values := map[string]string{
		"timeoutSeconds":        "30",
		"maxTokens":             "100",
		"temperature":           "0.5",
		"tools.timeoutSeconds":  "3",
		"privacy.redactSecrets": "false",
		"cache.enabled":         "true",
		"cache.ttlSeconds":      "60",
	}
	for _, key := range Keys {
		cfg := Default()
		v, ok := values[key]
		if !ok {
			v = "x"
		}
		if err := SetField(&cfg, key, v); err != nil {
			t.Errorf("SetField(%q) error: %v", key, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad provider", func(c *Config) { c.Provider = "gemini" }, "Provider must be one of"},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, "Temperature must be lte 2"},
		{"negative temperature", func(c *Config) { c.Temperature = -1 }, "Temperature must be gte 0"},
		{"bad format", func(c *Config) { c.Format = "sarif" }, "Format must be one of"},
		{"bad fail-on", func(c *Config) { c.FailOn = "high" }, "FailOn must be one of"},
		{"zero tool timeout", func(c *Config) { c.Tools.TimeoutSeconds = 0 }, "Tools.TimeoutSeconds must be gt 0"},
		{"bad languagetool url", func(c *Config) { c.Tools.LanguageToolURL = "not a url" }, "Tools.LanguageToolURL must be a URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigPrecedence(t *testing.T) {
	// Test that overrides > env > defaults
	t.Setenv("CODECRITIC_PROVIDER", "openai")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("After env merge, Provider = %q, want %q", cfg.Provider, "openai")
	}

	if err := mergeOverrides(&cfg, map[string]string{"provider": "anthropic"}); err != nil {
		t.Fatalf("mergeOverrides error: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("After override, Provider = %q, want %q", cfg.Provider, "anthropic")
	}
}

func TestMergeFile_RedactSecrets(t *testing.T) {
	dst := Default()
	mergeFile(&dst, Config{Privacy: PrivacyConfig{RedactSecrets: true}})
	if !dst.Privacy.RedactSecrets {
		t.Error("RedactSecrets should be enabled by the file")
	}
}

func TestMergeFile_Cache(t *testing.T) {
	dst := Default()
	mergeFile(&dst, Config{Cache: CacheConfig{Enabled: true, Dir: "/tmp/cc", TTLSeconds: 60}})
	if !dst.Cache.Enabled || dst.Cache.Dir != "/tmp/cc" || dst.Cache.TTLSeconds != 60 {
		t.Errorf("Cache = %+v", dst.Cache)
	}
}

func TestMergeFile_EmptyFile(t *testing.T) {
	dst := Default()
	mergeFile(&dst, Config{})
	want := Default()
	if dst.Provider != want.Provider || dst.MaxTokens != want.MaxTokens || dst.Tools.CXX != want.Tools.CXX {
		t.Errorf("empty file changed defaults: %+v", dst)
	}
	if len(dst.Privacy.RedactPaths) != 2 {
		t.Errorf("RedactPaths = %v, want defaults", dst.Privacy.RedactPaths)
	}
}

func TestMergeFile_AllFields(t *testing.T) {
	dst := Default()
	src := Config{
		Provider:       "anthropic",
		Model:          "claude-3-5-sonnet-latest",
		BaseURL:        "https://proxy.local/v1/messages",
		APIKeyEnv:      "MY_KEY",
		Format:         "markdown",
		FailOn:         "any",
		RulesFile:      "team.yaml",
		TimeoutSeconds: 60,
		MaxTokens:      1000,
		Temperature:    0.3,
		LogLevel:       "debug",
		Tools: ToolsConfig{
			Pylint:               "/opt/bin/pylint",
			Javac:                "/opt/jdk/bin/javac",
			CXX:                  "clang++",
			TimeoutSeconds:       7,
			LanguageToolURL:      "http://lt:8010/v2/check",
			LanguageToolLanguage: "en-GB",
		},
		Privacy: PrivacyConfig{RedactPaths: []string{"**/*.pem"}},
		Server:  ServerConfig{Addr: ":9090", AllowedOrigins: []string{"https://app.local"}, MaxBodyBytes: 2048},
	}
	mergeFile(&dst, src)

	if dst.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", dst.Provider, "anthropic")
	}
	if dst.BaseURL != "https://proxy.local/v1/messages" {
		t.Errorf("BaseURL = %q", dst.BaseURL)
	}
	if dst.APIKeyEnv != "MY_KEY" {
		t.Errorf("APIKeyEnv = %q", dst.APIKeyEnv)
	}
	if dst.Format != "markdown" {
		t.Errorf("Format = %q, want %q", dst.Format, "markdown")
	}
	if dst.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60", dst.TimeoutSeconds)
	}
	if dst.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", dst.Temperature)
	}
	if dst.Tools.Javac != "/opt/jdk/bin/javac" {
		t.Errorf("Tools.Javac = %q", dst.Tools.Javac)
	}
	if dst.Tools.LanguageToolLanguage != "en-GB" {
		t.Errorf("Tools.LanguageToolLanguage = %q", dst.Tools.LanguageToolLanguage)
	}
	if len(dst.Privacy.RedactPaths) != 1 || dst.Privacy.RedactPaths[0] != "**/*.pem" {
		t.Errorf("RedactPaths = %v", dst.Privacy.RedactPaths)
	}
	if dst.Server.Addr != ":9090" || dst.Server.MaxBodyBytes != 2048 {
		t.Errorf("Server = %+v", dst.Server)
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-v1-abc")
	t.Setenv("MY_KEY", "custom")

	cfg := Default()
	if got := cfg.APIKey(); got != "sk-or-v1-abc" {
		t.Errorf("APIKey() = %q, want provider default env value", got)
	}
	cfg.APIKeyEnv = "MY_KEY"
	if got := cfg.APIKey(); got != "custom" {
		t.Errorf("APIKey() = %q, want %q", got, "custom")
	}
	s := cfg.ProviderSettings()
	if s.APIKey != "custom" || s.Provider != "openrouter" || s.Timeout != 120*time.Second {
		t.Errorf("ProviderSettings() = %+v", s)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg-test/codecritic" {
		t.Errorf("ConfigDir = %q, want %q", dir, "/tmp/xdg-test/codecritic")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if path != "/tmp/xdg-test/codecritic/config.yaml" {
		t.Errorf("ConfigPath = %q, want %q", path, "/tmp/xdg-test/codecritic/config.yaml")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Provider = "openai"
	cfg.Model = "gpt-4o"
	cfg.MaxTokens = 900

	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", loaded.Provider, "openai")
	}
	if loaded.Model != "gpt-4o" {
		t.Errorf("Model = %q, want %q", loaded.Model, "gpt-4o")
	}
	if loaded.MaxTokens != 900 {
		t.Errorf("MaxTokens = %d, want 900", loaded.MaxTokens)
	}
	if loaded.Tools.CXX != "g++" {
		t.Errorf("Tools.CXX = %q, want %q", loaded.Tools.CXX, "g++")
	}
}

func TestLoadFile_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	// Should return zero config, not defaults
	if cfg.Provider != "" {
		t.Errorf("Provider should be empty for missing file, got %q", cfg.Provider)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "codecritic"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "codecritic", "config.yaml"), []byte("provider: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(); err == nil {
		t.Error("Expected parse error for malformed YAML")
	}
}

func TestLoad_Integration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("CODECRITIC_PROVIDER", "")
	t.Setenv("CODECRITIC_MODEL", "env-model")

	if err := os.MkdirAll(filepath.Join(dir, "codecritic"), 0o755); err != nil {
		t.Fatal(err)
	}
	file := "provider: anthropic\nmodel: file-model\nmaxTokens: 1200\n"
	if err := os.WriteFile(filepath.Join(dir, "codecritic", "config.yaml"), []byte(file), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(map[string]string{"provider": "openai"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Model != "env-model" {
		t.Errorf("Model = %q, want %q (env beats file)", cfg.Model, "env-model")
	}
	if cfg.MaxTokens != 1200 {
		t.Errorf("MaxTokens = %d, want 1200 (file)", cfg.MaxTokens)
	}
	// Defaults should be preserved for unset fields
	if cfg.Tools.TimeoutSeconds != 20 {
		t.Errorf("Tools.TimeoutSeconds = %d, want 20 (default)", cfg.Tools.TimeoutSeconds)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CODECRITIC_PROVIDER", "")
	if _, err := Load(map[string]string{"temperature": "3"}); err == nil {
		t.Error("Expected validation error for temperature 3")
	}
	if _, err := Load(map[string]string{"provider": "gemini"}); err == nil {
		t.Error("Expected validation error for unknown provider")
	}
}
