package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-vibewave/pkg/aggregator"
	"github.com/teslashibe/go-vibewave/pkg/camera"
	"github.com/teslashibe/go-vibewave/pkg/mood"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServer(t *testing.T, cam *camera.Manager) (*Server, *aggregator.Engine) {
	t.Helper()
	cfg := aggregator.DefaultConfig()
	cfg.TickInterval = time.Hour

	engine, err := aggregator.NewEngine(cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)
	t.Cleanup(cancel)

	return NewServer(DefaultConfig(), engine, cam, quietLogger()), engine
}

func do(t *testing.T, s *Server, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestServer_State(t *testing.T) {
	s, _ := testServer(t, nil)

	code, body := do(t, s, http.MethodGet, "/api/state", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %s", code, body)
	}
	st := decode[aggregator.State](t, body)
	if st.Current.Mood != mood.Neutral || st.Capture.Running || st.Scan.State != aggregator.ScanIdle {
		t.Errorf("unexpected initial state %+v", st)
	}
	if st.Config.CaptureInterval != aggregator.DefaultConfig().CaptureInterval {
		t.Errorf("config = %+v", st.Config)
	}
}

func TestServer_Live(t *testing.T) {
	s, engine := testServer(t, nil)
	engine.Submit(mood.NewPrediction(mood.Happy, 0.8, time.Now()))

	deadline := time.Now().Add(time.Second)
	var live aggregator.LiveView
	for time.Now().Before(deadline) {
		_, body := do(t, s, http.MethodGet, "/api/live", "")
		live = decode[aggregator.LiveView](t, body)
		if live.Active {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !live.Active || live.Mood != mood.Happy {
		t.Errorf("live = %+v", live)
	}
}

func TestServer_Capture(t *testing.T) {
	s, _ := testServer(t, nil)

	code, body := do(t, s, http.MethodPost, "/api/capture/start", "")
	if code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", code, body)
	}
	view := decode[aggregator.CaptureView](t, body)
	if !view.Running || view.Last == nil {
		t.Errorf("after start: %+v", view)
	}

	_, body = do(t, s, http.MethodGet, "/api/capture/history", "")
	if history := decode[[]mood.Captured](t, body); len(history) != 1 {
		t.Errorf("history len = %d, want 1", len(history))
	}

	_, body = do(t, s, http.MethodPost, "/api/capture/stop", "")
	if view := decode[aggregator.CaptureView](t, body); view.Running {
		t.Error("capture still running after stop")
	}
}

func TestServer_EmptyHistory(t *testing.T) {
	s, _ := testServer(t, nil)
	_, body := do(t, s, http.MethodGet, "/api/capture/history", "")
	if string(body) != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestServer_ScanStart(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     int
		duration int
	}{
		{"default duration", "", http.StatusOK, 10},
		{"explicit seconds", `{"seconds":3}`, http.StatusOK, 3},
		{"too long", `{"seconds":61}`, http.StatusBadRequest, 0},
		{"negative", `{"seconds":-1}`, http.StatusBadRequest, 0},
		{"malformed", `{"seconds":`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := testServer(t, nil)
			code, body := do(t, s, http.MethodPost, "/api/scan/start", tt.body)
			if code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", code, tt.want, body)
			}
			if tt.want != http.StatusOK {
				return
			}
			view := decode[aggregator.ScanView](t, body)
			if view.State != aggregator.ScanScanning || view.Duration != tt.duration {
				t.Errorf("scan = %+v", view)
			}
		})
	}
}

func TestServer_ScanConflictAndCancel(t *testing.T) {
	s, _ := testServer(t, nil)

	if code, _ := do(t, s, http.MethodPost, "/api/scan/start", `{"seconds":5}`); code != http.StatusOK {
		t.Fatalf("first start status = %d", code)
	}
	if code, _ := do(t, s, http.MethodPost, "/api/scan/start", `{"seconds":5}`); code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", code)
	}

	code, body := do(t, s, http.MethodPost, "/api/scan/cancel", "")
	if code != http.StatusOK {
		t.Fatalf("cancel status = %d", code)
	}
	if view := decode[aggregator.ScanView](t, body); view.State != aggregator.ScanIdle {
		t.Errorf("after cancel state = %v", view.State)
	}

	// Cancelling again is a no-op.
	if code, _ := do(t, s, http.MethodPost, "/api/scan/cancel", ""); code != http.StatusOK {
		t.Errorf("second cancel status = %d", code)
	}
}

func TestServer_EngineStopped(t *testing.T) {
	cfg := aggregator.DefaultConfig()
	engine, err := aggregator.NewEngine(cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	s := NewServer(DefaultConfig(), engine, nil, quietLogger())
	if code, _ := do(t, s, http.MethodPost, "/api/capture/start", ""); code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", code)
	}
}

func TestServer_Moods(t *testing.T) {
	s, _ := testServer(t, nil)
	_, body := do(t, s, http.MethodGet, "/api/moods", "")

	infos := decode[[]mood.Info](t, body)
	if len(infos) != mood.Count {
		t.Fatalf("got %d moods, want %d", len(infos), mood.Count)
	}
	if infos[0].Mood != mood.Happy || infos[0].Emoji == "" {
		t.Errorf("first entry = %+v", infos[0])
	}
}

func TestServer_Camera(t *testing.T) {
	t.Run("no camera", func(t *testing.T) {
		s, _ := testServer(t, nil)
		if code, _ := do(t, s, http.MethodGet, "/api/camera", ""); code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", code)
		}
	})

	t.Run("preset", func(t *testing.T) {
		var applied camera.Config
		mgr := camera.NewManager(camera.DefaultConfig())
		mgr.OnConfigChange = func(cfg camera.Config) error {
			applied = cfg
			return nil
		}
		s, _ := testServer(t, mgr)

		code, body := do(t, s, http.MethodPost, "/api/camera", `{"preset":"720p","quality":90}`)
		if code != http.StatusOK {
			t.Fatalf("status = %d, body %s", code, body)
		}
		cfg := decode[camera.Config](t, body)
		if cfg.Width != 1280 || cfg.Height != 720 || cfg.Quality != 90 {
			t.Errorf("config = %+v", cfg)
		}
		if applied != cfg {
			t.Errorf("applied %+v, stored %+v", applied, cfg)
		}

		_, body = do(t, s, http.MethodGet, "/api/camera", "")
		resp := decode[CameraResponse](t, body)
		if len(resp.Presets) != len(camera.PresetNames()) {
			t.Errorf("presets = %v", resp.Presets)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		s, _ := testServer(t, camera.NewManager(camera.DefaultConfig()))
		if code, _ := do(t, s, http.MethodPost, "/api/camera", `{"quality":500}`); code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})
}

func TestServer_WebsocketRequiresUpgrade(t *testing.T) {
	s, _ := testServer(t, nil)
	if code, _ := do(t, s, http.MethodGet, "/ws/state", ""); code != http.StatusUpgradeRequired {
		t.Errorf("status = %d, want 426", code)
	}
}
