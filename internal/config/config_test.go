package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"bilisum/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BILISUM_BASE_URL", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url: %q", cfg.Backend.BaseURL)
	}
	if cfg.PollInterval() != time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.PollTimeout() != 0 {
		t.Fatalf("expected unbounded polling by default, got %s", cfg.PollTimeout())
	}
	wantState := filepath.Join(tempHome, ".local", "share", "bilisum")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.LockPath() != filepath.Join(wantState, "bilisum.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if !cfg.Output.WriteFiles {
		t.Fatal("expected summary files enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.Output.Dir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("BILISUM_BASE_URL", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bilisum.toml")

	type payload struct {
		Backend struct {
			BaseURL string `toml:"base_url"`
		} `toml:"backend"`
		Polling struct {
			IntervalMillis int `toml:"interval_ms"`
			TimeoutSeconds int `toml:"timeout_seconds"`
		} `toml:"polling"`
		Presets struct {
			Default string `toml:"default"`
		} `toml:"presets"`
		Output struct {
			Dir string `toml:"dir"`
		} `toml:"output"`
	}
	custom := payload{}
	custom.Backend.BaseURL = "127.0.0.1:9000/"
	custom.Polling.IntervalMillis = 250
	custom.Polling.TimeoutSeconds = 30
	custom.Presets.Default = " translation "
	custom.Output.Dir = filepath.Join(tempDir, "out")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:9000" {
		t.Fatalf("expected normalized base url, got %q", cfg.Backend.BaseURL)
	}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.PollTimeout() != 30*time.Second {
		t.Fatalf("unexpected poll timeout: %s", cfg.PollTimeout())
	}
	if cfg.Presets.Default != "translation" {
		t.Fatalf("expected trimmed default preset, got %q", cfg.Presets.Default)
	}
	if cfg.Output.Dir != custom.Output.Dir {
		t.Fatalf("unexpected output dir: %q", cfg.Output.Dir)
	}
}

func TestLoadHonoursBaseURLEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BILISUM_BASE_URL", "http://backend.local:8123")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backend.BaseURL != "http://backend.local:8123" {
		t.Fatalf("expected env base url, got %q", cfg.Backend.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "scheme",
			mutate: func(c *config.Config) { c.Backend.BaseURL = "ftp://localhost" },
			want:   "backend.base_url",
		},
		{
			name:   "interval",
			mutate: func(c *config.Config) { c.Polling.IntervalMillis = 10 },
			want:   "polling.interval_ms",
		},
		{
			name:   "timeout",
			mutate: func(c *config.Config) { c.Polling.TimeoutSeconds = -1 },
			want:   "polling.timeout_seconds",
		},
		{
			name:   "ntfy",
			mutate: func(c *config.Config) { c.Notifications.NtfyTopic = "not a url" },
			want:   "notifications.ntfy_topic",
		},
		{
			name:   "log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
		{
			name:   "log level",
			mutate: func(c *config.Config) { c.Logging.Level = "loud" },
			want:   "logging.level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("BILISUM_BASE_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected sample base url: %q", cfg.Backend.BaseURL)
	}
}
