package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"VIBEWAVE_SOURCE", "VIBEWAVE_ADDR", "VIBEWAVE_FEED_URL", "VIBEWAVE_DETECTOR_MODEL",
		"VIBEWAVE_LOG_LEVEL", "VIBEWAVE_LOG_FILE", "VIBEWAVE_CAMERA_DEVICE",
		"VIBEWAVE_CAPTURE_INTERVAL", "VIBEWAVE_CONFIDENCE_FLOOR",
		"GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "vibewave.toml")
	writeFile(t, path, `
source = "feed"

[aggregator]
capture_interval = "8s"
confidence_floor = 0.3

[feed]
url = "ws://10.0.0.5:9000/frames"

[web]
addr = ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourceFeed {
		t.Errorf("Source = %q", cfg.Source)
	}
	if cfg.Aggregator.CaptureInterval != 8*time.Second || cfg.Aggregator.ConfidenceFloor != 0.3 {
		t.Errorf("aggregator = %+v", cfg.Aggregator)
	}
	if cfg.Aggregator.SmoothingHorizon != DefaultConfig().Aggregator.SmoothingHorizon {
		t.Errorf("unset field lost its default: %v", cfg.Aggregator.SmoothingHorizon)
	}
	if cfg.Feed.URL != "ws://10.0.0.5:9000/frames" || cfg.Web.Addr != ":9090" {
		t.Errorf("feed %q web %q", cfg.Feed.URL, cfg.Web.Addr)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"interval out of range", "[aggregator]\ncapture_interval = \"20s\"\n", ErrInvalid},
		{"floor out of range", "[aggregator]\nconfidence_floor = 0.9\n", ErrInvalid},
		{"bad source", "source = \"tape\"\n", ErrInvalid},
		{"unknown key", "[aggregator]\nwindow = 3\n", ErrUnknownKeys},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "vibewave.toml")
			writeFile(t, path, tt.content)

			_, err := Load(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("syntax", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "vibewave.toml")
		writeFile(t, path, "source = \n")
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("VIBEWAVE_SOURCE", "feed")
	t.Setenv("VIBEWAVE_CAPTURE_INTERVAL", "7s")
	t.Setenv("VIBEWAVE_CONFIDENCE_FLOOR", "0.4")
	t.Setenv("VIBEWAVE_CAMERA_DEVICE", "2")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourceFeed || cfg.Camera.Device != 2 {
		t.Errorf("source %q device %d", cfg.Source, cfg.Camera.Device)
	}
	if cfg.Aggregator.CaptureInterval != 7*time.Second || cfg.Aggregator.ConfidenceFloor != 0.4 {
		t.Errorf("aggregator = %+v", cfg.Aggregator)
	}
	if !cfg.Classifier.Enabled || cfg.Classifier.APIKey != "gemini-key" {
		t.Errorf("classifier enabled=%v key=%q", cfg.Classifier.Enabled, cfg.Classifier.APIKey)
	}
}

func TestLoad_EnvParseError(t *testing.T) {
	clearEnv(t)
	t.Setenv("VIBEWAVE_CAPTURE_INTERVAL", "soon")
	if _, err := Load(""); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestWatcher_Reloads(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "vibewave.toml")
	writeFile(t, path, "[aggregator]\ncapture_interval = \"5s\"\n")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(c Config) { got <- c }) }()

	// Invalid content is skipped.
	writeFile(t, path, "[aggregator]\ncapture_interval = \"1m\"\n")
	time.Sleep(3 * settle)
	writeFile(t, path, "[aggregator]\ncapture_interval = \"9s\"\n")

	select {
	case cfg := <-got:
		if cfg.Aggregator.CaptureInterval != 9*time.Second {
			t.Errorf("reloaded interval = %v, want 9s", cfg.Aggregator.CaptureInterval)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
