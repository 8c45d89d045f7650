package checks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fakeCall struct {
	dir     string
	name    string
	args    []string
	content string
}

// fakeRunner records invocations and returns a canned result. It reads the
// workspace while the call is in flight, since the directory is removed
// afterwards.
type fakeRunner struct {
	mu        sync.Mutex
	installed map[string]bool
	result    RunResult
	results   map[string]RunResult
	readFile  string
	calls     []fakeCall
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeRunner) Run(_ context.Context, dir string, _ time.Duration, name string, args ...string) RunResult {
	call := fakeCall{dir: dir, name: name, args: args}
	if f.readFile != "" {
		if b, err := os.ReadFile(filepath.Join(dir, f.readFile)); err == nil {
			call.content = string(b)
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if r, ok := f.results[name]; ok {
		return r
	}
	return f.result
}
