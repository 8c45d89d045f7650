// Package redact removes secrets from submitted code before it is embedded
// in a prompt and sent to a remote model.
//
// Scrub runs an ordered list of regex rules (provider API keys, cloud
// credentials, JWTs, private key blocks, connection strings, credential
// assignments) and replaces each hit with a [REDACTED:<kind>] marker. The
// returned Report counts hits per kind.
//
// Files whose path matches a configured glob are withheld entirely instead
// of being scanned.
package redact
