// Package cli wires together the Cobra command tree for the codecritic binary.
//
// It defines the root command and all subcommands (analyze, serve, tools,
// config, models, cache, version), binds flags, reads configuration, builds the
// analysis pipeline and returns deterministic exit codes for CI gating.
package cli
