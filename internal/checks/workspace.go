package checks

import (
	"fmt"
	"os"
	"path/filepath"
)

// workspace writes code under a fixed file name inside a fresh temporary
// directory. Every invocation gets its own directory, so concurrent
// requests never share a file.
type workspace struct {
	dir  string
	file string
}

func newWorkspace(lang Language, fileName, code string) (*workspace, error) {
	dir, err := os.MkdirTemp("", "codecritic-"+string(lang)+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, []byte(code), 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing %s: %w", fileName, err)
	}
	return &workspace{dir: dir, file: path}, nil
}

// Close removes the directory and anything the tool generated in it.
func (w *workspace) Close() error {
	return os.RemoveAll(w.dir)
}
