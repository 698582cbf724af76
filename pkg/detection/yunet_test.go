package detection

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	modelPath := findModelPath()
	if modelPath == "" {
		t.Skip("YuNet model not found, skipping test")
	}
	cfg := DefaultConfig()
	cfg.ModelPath = modelPath
	return cfg
}

func TestYuNetNewInvalidPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/path/model.onnx"

	_, err := NewYuNet(cfg, nil)
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("NewYuNet() error = %v, want ErrModelNotFound", err)
	}
}

func TestYuNetDetect_InvalidImage(t *testing.T) {
	detector, err := NewYuNet(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	if _, err := detector.Detect([]byte("not a jpeg")); err == nil {
		t.Error("expected error for invalid JPEG")
	}
}

func TestYuNetDetect_SolidImage(t *testing.T) {
	detector, err := NewYuNet(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	dets, err := detector.Detect(createSolidJPEG(320, 240, color.RGBA{0, 0, 255, 255}))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(dets) > 0 {
		t.Errorf("expected no detections in solid image, got %d", len(dets))
	}
}

func TestYuNetClose(t *testing.T) {
	detector, err := NewYuNet(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	if err := detector.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := detector.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := detector.Detect(createSolidJPEG(32, 32, color.Black)); !errors.Is(err, ErrClosed) {
		t.Errorf("Detect after Close error = %v, want ErrClosed", err)
	}
}

func TestYuNetConcurrency(t *testing.T) {
	detector, err := NewYuNet(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	frame := createSolidJPEG(320, 240, color.RGBA{100, 100, 100, 255})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := detector.Detect(frame); err != nil {
				t.Errorf("concurrent Detect failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func findModelPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for dir := cwd; dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		p := filepath.Join(dir, "models", "face_detection_yunet.onnx")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func createSolidJPEG(width, height int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
