package cache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Entry is one cached model reply.
type Entry struct {
	Key       string    `json:"key"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// Store is a directory of JSON entries named by the hash of their key.
type Store struct {
	dir        string
	ttlSeconds int
}

// New opens a store, creating dir if needed. An empty dir selects the
// platform cache directory. ttlSeconds <= 0 disables expiry.
func New(dir string, ttlSeconds int) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Store{dir: dir, ttlSeconds: ttlSeconds}, nil
}

// Get returns the reply stored under key. Expired entries are removed and
// reported as a miss.
func (s *Store) Get(key string) (string, bool) {
	path := s.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if s.expired(entry) {
		_ = os.Remove(path)
		return "", false
	}
	return entry.Reply, true
}

// Put stores reply under key, replacing any previous entry.
func (s *Store) Put(key, reply string) error {
	entry := Entry{
		Key:       Hash(key),
		Reply:     reply,
		CreatedAt: time.Now(),
		TTL:       s.ttlSeconds,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	// Concurrent writers of the same key each get their own temp file.
	f, err := os.CreateTemp(s.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("writing cache entry: %w", errors.Join(werr, cerr))
	}
	if err := os.Rename(f.Name(), s.entryPath(key)); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats describes the store contents.
type Stats struct {
	Dir        string `json:"dir" yaml:"dir"`
	Entries    int    `json:"entries" yaml:"entries"`
	TotalBytes int64  `json:"totalBytes" yaml:"totalBytes"`
	Expired    int    `json:"expired" yaml:"expired"`
}

// Stats walks the store.
func (s *Store) Stats() (Stats, error) {
	stats := Stats{Dir: s.dir}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if json.Unmarshal(data, &entry) == nil && s.expired(entry) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) expired(e Entry) bool {
	return s.ttlSeconds > 0 && time.Since(e.CreatedAt) > time.Duration(s.ttlSeconds)*time.Second
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, Hash(key)+".json")
}

// Hash returns the hex SHA-256 of key.
func Hash(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// Key joins the inputs that determine a model reply. Parts are
// length-prefixed so no two part lists collide.
func Key(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		fmt.Fprintf(&b, "%d:%s;", len(p), p)
	}
	return b.String()
}

// DefaultDir returns the platform cache directory for codecritic.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "codecritic"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "codecritic"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "codecritic", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "codecritic", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "codecritic"), nil
	}
}
