// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents repository configuration stored in .bibx/config.json.
// Zero values mean "use the global setting".
type Config struct {
	DefaultStyle    string  `json:"default_style,omitempty"`
	TitleThreshold  float64 `json:"title_threshold,omitempty"`
	AuthorThreshold float64 `json:"author_threshold,omitempty"`
	Workers         int     `json:"workers,omitempty"`
}

const (
	RepoDir    = ".bibx"
	ConfigFile = "config.json"
	RefsFile   = "refs.jsonl"
	RunsFile   = "runs.jsonl"
	CacheDir   = "cache"
	DBFile     = "refs.db"
)

// ErrNotRepository is returned when no .bibx directory is found.
var ErrNotRepository = errors.New("not in a bibx repository (no .bibx directory found)")

// RepoPath returns the path to the .bibx directory from a root path.
func RepoPath(root string) string {
	return filepath.Join(root, RepoDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RepoDir, ConfigFile)
}

// RefsPath returns the path to refs.jsonl from a root path.
func RefsPath(root string) string {
	return filepath.Join(root, RepoDir, RefsFile)
}

// RunsPath returns the path to runs.jsonl from a root path.
func RunsPath(root string) string {
	return filepath.Join(root, RepoDir, RunsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir)
}

// DBPath returns the path to refs.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RepoDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a bibx repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RepoPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a bibx repository.
// Returns the repository root path or ErrNotRepository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// Init creates the .bibx layout under root with a default config.
// It fails if a repository already exists there.
func Init(root string) error {
	if IsRepository(root) {
		return fmt.Errorf("repository already exists at %s", RepoPath(root))
	}
	if err := os.MkdirAll(CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", RepoDir, err)
	}
	for _, p := range []string{RefsPath(root), RunsPath(root)} {
		if err := os.WriteFile(p, nil, 0644); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Base(p), err)
		}
	}
	return (&Config{}).Save(root)
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
