// Package review is the analysis pipeline.
//
// An Engine validates a Request, runs the local checks for its language,
// builds the prompt (prompt.go), sends it through an Analyzer and
// normalizes the model's answer into a Result with three independently
// renderable parts: local checks, model analysis and the fixed artifact.
//
// Model replies are only loosely JSON. ParseReply tries an ordered chain of
// strategies (strict, enclosed, repaired) and falls back to carrying the
// whole reply as RawOutput; the reply is never discarded.
//
// Only a failed remote call is terminal. It is reported as *ErrorResult,
// which unwraps to the provider error.
//
// Rules packs (rules.go) add focus areas and required checks to the prompt,
// optionally scoped to particular languages.
package review
