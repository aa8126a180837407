package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY", "INFOPULSE_MODEL", "INFOPULSE_LANG"} {
		t.Setenv(name, "")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Refresh.Policy != PolicyPartial {
		t.Errorf("default policy = %q", cfg.Refresh.Policy)
	}
	if cfg.FetchTimeout() != 60*time.Second {
		t.Errorf("default timeout = %v", cfg.FetchTimeout())
	}
	if cfg.HasGeminiKey() {
		t.Error("no key expected without env")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "  secret  ")
	t.Setenv("INFOPULSE_MODEL", "gemini-test")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Gemini.APIKey != "secret" {
		t.Errorf("api key = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-test" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := DefaultConfig()
	cfg.Refresh.Policy = PolicyAllOrNothing
	cfg.Refresh.FetchTimeoutSeconds = 5
	cfg.UI.DefaultLanguage = "en"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config permissions = %v, want 0600", info.Mode().Perm())
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got.Refresh.Policy != PolicyAllOrNothing || got.FetchTimeout() != 5*time.Second || got.UI.DefaultLanguage != "en" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadFromNormalizesBadValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{"refresh":{"fetch_timeout_seconds":-1,"policy":"sometimes","max_concurrent":-3},"gemini":{"model":""}}`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Refresh.Policy != PolicyPartial {
		t.Errorf("policy = %q", cfg.Refresh.Policy)
	}
	if cfg.Refresh.FetchTimeoutSeconds != 60 {
		t.Errorf("timeout = %d", cfg.Refresh.FetchTimeoutSeconds)
	}
	if cfg.Refresh.MaxConcurrent != 0 {
		t.Errorf("max concurrent = %d", cfg.Refresh.MaxConcurrent)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
}

func TestLoadFromMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("malformed config should fall back to defaults, got %v", err)
	}
	if cfg.News.MaxItems != 6 {
		t.Errorf("expected defaults, got %+v", cfg.News)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("GEMINI_API_KEY")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GEMINI_API_KEY=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))

	cfg := DefaultConfig()
	cfg.AutoPopulateFromEnv()
	if cfg.Gemini.APIKey != "from-dotenv" {
		t.Errorf("api key = %q", cfg.Gemini.APIKey)
	}
}
