package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Commit policies for a refresh batch.
const (
	PolicyPartial      = "partial"
	PolicyAllOrNothing = "all_or_nothing"
)

// Config is the persistent application configuration
type Config struct {
	// Gemini search provider
	Gemini GeminiConfig `json:"gemini"`

	// Key-less news search fallback
	News NewsConfig `json:"news"`

	// Refresh orchestration
	Refresh RefreshConfig `json:"refresh"`

	// UI preferences
	UI UIConfig `json:"ui"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level"`
}

// GeminiConfig holds the hosted search provider settings
type GeminiConfig struct {
	APIKey            string `json:"api_key,omitempty"`
	Model             string `json:"model,omitempty"`
	Endpoint          string `json:"endpoint,omitempty"`
	RequestsPerMinute int    `json:"requests_per_minute"`
}

// NewsConfig holds the RSS search fallback settings
type NewsConfig struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint,omitempty"`
	MaxItems int    `json:"max_items"`
}

// RefreshConfig controls the fan-out refresh
type RefreshConfig struct {
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds"`
	MaxConcurrent       int    `json:"max_concurrent"` // 0 = one goroutine per topic
	Policy              string `json:"policy"`         // "partial" or "all_or_nothing"
}

// UIConfig holds UI preferences
type UIConfig struct {
	DefaultLanguage string `json:"default_language"` // used until the user picks one
	AltScreen       bool   `json:"alt_screen"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:             "gemini-2.5-flash",
			Endpoint:          "https://generativelanguage.googleapis.com/v1beta",
			RequestsPerMinute: 10,
		},
		News: NewsConfig{
			Enabled:  true,
			Endpoint: "https://news.google.com/rss/search",
			MaxItems: 6,
		},
		Refresh: RefreshConfig{
			FetchTimeoutSeconds: 60,
			MaxConcurrent:       0,
			Policy:              PolicyPartial,
		},
		UI: UIConfig{
			DefaultLanguage: "zh",
			AltScreen:       true,
		},
		LogLevel: "info",
	}
}

// DataDir returns the directory holding the database, config and logs
func DataDir() string {
	if dir := os.Getenv("INFOPULSE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".infopulse")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Load reads config from the default path, or returns defaults
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields defaults populated
// from the environment; a malformed file yields plain defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	// Start from defaults so fields missing in older files keep sane values.
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), nil
	}

	cfg.AutoPopulateFromEnv()
	cfg.normalize()
	return cfg, nil
}

// Save writes config to the default path
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// LoadDotEnv loads KEY=value pairs from the given files (default ".env")
// into the process environment. Existing variables win. Missing files are
// ignored.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// AutoPopulateFromEnv fills in settings from environment variables
func (c *Config) AutoPopulateFromEnv() {
	for _, name := range []string{"API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			c.Gemini.APIKey = key
		}
	}
	if model := os.Getenv("INFOPULSE_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if lang := os.Getenv("INFOPULSE_LANG"); lang != "" {
		c.UI.DefaultLanguage = lang
	}
}

// FetchTimeout returns the per-topic fetch timeout
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Refresh.FetchTimeoutSeconds) * time.Second
}

// HasGeminiKey reports whether the hosted provider can be used
func (c *Config) HasGeminiKey() bool {
	return c.Gemini.APIKey != ""
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Refresh.FetchTimeoutSeconds <= 0 {
		c.Refresh.FetchTimeoutSeconds = d.Refresh.FetchTimeoutSeconds
	}
	if c.Refresh.MaxConcurrent < 0 {
		c.Refresh.MaxConcurrent = 0
	}
	if c.Refresh.Policy != PolicyPartial && c.Refresh.Policy != PolicyAllOrNothing {
		c.Refresh.Policy = PolicyPartial
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.Gemini.Endpoint == "" {
		c.Gemini.Endpoint = d.Gemini.Endpoint
	}
	if c.Gemini.RequestsPerMinute <= 0 {
		c.Gemini.RequestsPerMinute = d.Gemini.RequestsPerMinute
	}
	if c.News.MaxItems <= 0 {
		c.News.MaxItems = d.News.MaxItems
	}
	if c.News.Endpoint == "" {
		c.News.Endpoint = d.News.Endpoint
	}
}
