// Package cache keeps model replies on disk so an identical request is not
// sent twice.
//
// Entries are keyed by a SHA-256 hash of the provider, model, sampling
// settings and the full prompt, which already embeds the (optionally
// redacted) code and the local check results. Each entry stores the raw
// reply; it is parsed again on every hit. Expired entries are skipped on
// read and removed on clear.
//
// The default directory is $XDG_CACHE_HOME/codecritic (or the OS-appropriate
// equivalent).
package cache
