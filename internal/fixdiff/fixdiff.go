package fixdiff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Stat counts changed lines. A removed line immediately replaced by an
// added one counts as changed.
type Stat struct {
	Added   int `json:"added" yaml:"added"`
	Changed int `json:"changed" yaml:"changed"`
	Deleted int `json:"deleted" yaml:"deleted"`
}

// Patch is a unified diff and its statistics. Both are zero when the inputs
// are identical.
type Patch struct {
	Unified string
	Stat    Stat
}

// GitDiffer produces patches with git.
type GitDiffer struct {
	// Git is the git binary; empty means "git" on PATH.
	Git string
}

// Diff compares before and after as the file name.
func (g GitDiffer) Diff(ctx context.Context, name, before, after string) (Patch, error) {
	git := g.Git
	if git == "" {
		git = "git"
	}
	if _, err := exec.LookPath(git); err != nil {
		return Patch{}, fmt.Errorf("git not available: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "codecritic-diff-*")
	if err != nil {
		return Patch{}, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	base := filepath.Base(name)
	for dir, content := range map[string]string{"a": before, "b": after} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0o755); err != nil {
			return Patch{}, err
		}
		if err := os.WriteFile(filepath.Join(tmpDir, dir, base), []byte(content), 0o644); err != nil {
			return Patch{}, err
		}
	}

	// Paths are relative to tmpDir and already start with a/ and b/.
	unified, err := gitOutput(ctx, tmpDir, git, "diff", "--no-index", "--no-prefix", "--no-color", "--no-ext-diff",
		filepath.Join("a", base), filepath.Join("b", base))
	if err != nil {
		return Patch{}, fmt.Errorf("git diff --no-index: %w", err)
	}
	if unified == "" {
		return Patch{}, nil
	}

	stat, err := Summarize(unified)
	if err != nil {
		return Patch{Unified: unified}, err
	}
	return Patch{Unified: unified, Stat: stat}, nil
}

// Summarize parses a unified diff and totals its line statistics.
func Summarize(unified string) (Stat, error) {
	fds, err := godiff.ParseMultiFileDiff([]byte(unified))
	if err != nil {
		return Stat{}, fmt.Errorf("parsing diff: %w", err)
	}
	var total Stat
	for _, fd := range fds {
		s := fd.Stat()
		total.Added += int(s.Added)
		total.Changed += int(s.Changed)
		total.Deleted += int(s.Deleted)
	}
	return total, nil
}

// gitOutput runs git in dir. git diff --no-index exits 1 when the files
// differ; that is a success here.
func gitOutput(ctx context.Context, dir, git string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, git, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && len(out) > 0 {
			return string(out), nil
		}
		return "", fmt.Errorf("%s: %s", err, stderr.String())
	}
	return string(out), nil
}
