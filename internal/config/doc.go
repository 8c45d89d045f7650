// Package config loads and merges codecritic configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CODECRITIC_PROVIDER, CODECRITIC_MODEL, CODECRITIC_TOOL_TIMEOUT, etc.)
//  3. Config file ($XDG_CONFIG_HOME/codecritic/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged and validated [Config], [Save] to write a
// config file, and [SetField] to update a single key. API keys are read from
// the environment variable named by apiKeyEnv and are never persisted.
package config
