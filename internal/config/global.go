package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/bibx/config.yml.
// Environment variables override the file.
type GlobalConfig struct {
	LibraryPath string    `yaml:"library_path,omitempty" env:"BIBX_LIBRARY_PATH"`
	Style       string    `yaml:"style,omitempty"        env:"BIBX_STYLE"   env-default:"APA 7"`
	Workers     int       `yaml:"workers,omitempty"      env:"BIBX_WORKERS" env-default:"0"`
	Log         LogConfig `yaml:"log,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"  env:"BIBX_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format,omitempty" env:"BIBX_LOG_FORMAT" env-default:"text"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bibx"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// GlobalKeys lists the keys accepted by GetGlobalValue and SetGlobalValue.
var GlobalKeys = []string{"library_path", "style", "workers", "log.level", "log.format"}

// ErrUnknownKey is returned for a config key not in GlobalKeys.
var ErrUnknownKey = errors.New("unknown config key")

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibx/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration.
// Priority: ENV > YAML > defaults. A missing file is not an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	var cfg GlobalConfig
	path := GlobalConfigPath()
	if _, err := os.Stat(path); path != "" && err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading global config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading global config from env: %w", err)
	}

	if cfg.LibraryPath != "" {
		cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetGlobalValue returns the value of key from cfg as a string.
func GetGlobalValue(cfg *GlobalConfig, key string) (string, error) {
	switch key {
	case "library_path":
		return cfg.LibraryPath, nil
	case "style":
		return cfg.Style, nil
	case "workers":
		return strconv.Itoa(cfg.Workers), nil
	case "log.level":
		return cfg.Log.Level, nil
	case "log.format":
		return cfg.Log.Format, nil
	}
	return "", fmt.Errorf("%w: %s (valid: %v)", ErrUnknownKey, key, GlobalKeys)
}

// SetGlobalValue sets key in the global config file, leaving environment
// overrides and defaults out of what is written.
func SetGlobalValue(key, value string) error {
	path := GlobalConfigPath()
	if path == "" {
		return errors.New("cannot determine global config path")
	}

	var cfg GlobalConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing global config: %w", err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("reading global config: %w", err)
	}

	switch key {
	case "library_path":
		cfg.LibraryPath = value
	case "style":
		cfg.Style = value
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("workers must be an integer: %w", err)
		}
		cfg.Workers = n
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	default:
		return fmt.Errorf("%w: %s (valid: %v)", ErrUnknownKey, key, GlobalKeys)
	}

	check := cfg
	if check.Style == "" {
		check.Style = "APA 7"
	}
	if err := check.Validate(); err != nil {
		return err
	}

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	ResetGlobalConfigCache()
	return nil
}
