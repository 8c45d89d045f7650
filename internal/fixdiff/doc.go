// Package fixdiff renders the change between submitted code and the
// model's corrected version as a unified diff, with line statistics.
//
// The diff itself comes from git diff --no-index over two temporary files,
// so git must be on PATH; callers treat a missing git as "no diff".
package fixdiff
