package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// appName is the application name used for directories and display.
const appName = "journeymap"

// Config holds journeymap configuration loaded from a TOML file. Zero
// values fall back to the built-in defaults, so a partial file is fine.
type Config struct {
	// ListenAddr is the HTTP listen address for the serve command.
	ListenAddr string `toml:"listen_addr"`

	// MongoURI selects the Mongo store backend. Empty means an in-memory
	// store seeded with demo data.
	MongoURI string `toml:"mongo_uri"`

	// MongoDatabase overrides the default database name.
	MongoDatabase string `toml:"mongo_database"`

	// RedisAddr selects the Redis cache backend. Empty means file cache.
	RedisAddr string `toml:"redis_addr"`

	// RedisPassword is the optional Redis password.
	RedisPassword string `toml:"redis_password"`

	// CacheDir overrides the file cache location.
	CacheDir string `toml:"cache_dir"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		ListenAddr: ":8080",
	}
}

// loadConfig reads a TOML config file. An empty path returns the defaults;
// a missing file at the default location is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	return cfg, nil
}

// defaultConfigPath returns ~/.config/journeymap/config.toml following XDG,
// or "" when no home directory is available.
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// cacheDir returns the cache directory using XDG standard
// (~/.cache/journeymap/), honoring the config override.
func cacheDir(cfg Config) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
