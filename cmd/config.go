package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the client configuration, read from the config file and the environment.
type Config struct {
	Store           string `yaml:"store" json:"store"` // file, sqlite or firestore
	User            string `yaml:"user" json:"user"`
	DataDir         string `yaml:"data_dir" json:"data_dir"`
	CacheDir        string `yaml:"cache_dir" json:"cache_dir"`
	AlphaVantageKey string `yaml:"alphavantage_key" json:"alphavantage_key"`
	NewsKey         string `yaml:"news_key" json:"news_key"`
	FirebaseProject string `yaml:"firebase_project" json:"firebase_project"`
	Credentials     string `yaml:"credentials,omitempty" json:"credentials,omitempty"`
	// Mock overrides the mockData setting of the user when set.
	Mock *bool `yaml:"mock,omitempty" json:"mock,omitempty"`
	// Strict disables the mock fallback when the quote API fails.
	Strict bool `yaml:"strict" json:"strict"`
}

// Store backends.
const (
	StoreFile      = "file"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// DefaultUser owns the portfolio when no user is configured.
const DefaultUser = "local"

// Environment variables, the first set one wins.
var (
	envAlphaVantageKey = []string{"FOLIO_ALPHAVANTAGE_API_KEY", "ALPHAVANTAGE_API_KEY", "VITE_ALPHA_VANTAGE_API_KEY"}
	envNewsKey         = []string{"FOLIO_NEWS_API_KEY", "NEWS_API_KEY", "VITE_NEWS_API_KEY"}
	envMock            = []string{"FOLIO_MOCK_DATA", "VITE_ENABLE_MOCK_DATA"}
	envFirebaseProject = []string{"FOLIO_FIREBASE_PROJECT_ID", "FIREBASE_PROJECT_ID", "VITE_FIREBASE_PROJECT_ID"}
	envUser            = []string{"FOLIO_USER"}
	envStore           = []string{"FOLIO_STORE"}
	envDataDir         = []string{"FOLIO_DATA_DIR"}
	envSupabase        = []string{"VITE_SUPABASE_URL", "VITE_SUPABASE_ANON_KEY"}
)

// DefaultConfigFile returns $XDG_CONFIG_HOME/folio/config.yaml or its platform equivalent.
func DefaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "folio", "config.yaml")
}

// ReadConfig reads a YAML config file. A missing file is an empty config.
func ReadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return c, nil
}

// env returns the value of the first variable set among 'names'.
func env(getenv func(string) string, names []string) string {
	for _, n := range names {
		if v := strings.TrimSpace(getenv(n)); v != "" {
			return v
		}
	}
	return ""
}

// merge overrides c with the environment, then with 'flags', and fills defaults.
func (c Config) merge(getenv func(string) string, flags Config) (Config, error) {
	set := func(dst *string, values ...string) {
		for _, v := range values {
			if v != "" {
				*dst = v
			}
		}
	}
	set(&c.Store, env(getenv, envStore), flags.Store)
	set(&c.User, env(getenv, envUser), flags.User)
	set(&c.DataDir, env(getenv, envDataDir), flags.DataDir)
	set(&c.CacheDir, flags.CacheDir)
	set(&c.AlphaVantageKey, env(getenv, envAlphaVantageKey), flags.AlphaVantageKey)
	set(&c.NewsKey, env(getenv, envNewsKey), flags.NewsKey)
	set(&c.FirebaseProject, env(getenv, envFirebaseProject), flags.FirebaseProject)
	set(&c.Credentials, flags.Credentials)
	c.Strict = c.Strict || flags.Strict

	if v := env(getenv, envMock); v != "" {
		mock, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("invalid mock data value %q: %w", v, err)
		}
		c.Mock = &mock
	}
	if flags.Mock != nil {
		c.Mock = flags.Mock
	}

	if c.Store == "" {
		c.Store = StoreFile
	}
	switch c.Store {
	case StoreFile, StoreSQLite:
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return c, fmt.Errorf("the firestore store needs a firebase project id")
		}
	default:
		return c, fmt.Errorf("unknown store %q: want file, sqlite or firestore", c.Store)
	}
	if c.User == "" {
		c.User = DefaultUser
	}
	if c.DataDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.DataDir = filepath.Join(dir, "folio", "data")
		} else {
			c.DataDir = ".folio"
		}
	}
	return c, nil
}
