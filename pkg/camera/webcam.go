package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-vibewave/pkg/inference"
)

// ErrClosed is returned when reading from a closed webcam.
var ErrClosed = errors.New("camera: closed")

// Webcam captures frames from a local video device.
type Webcam struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	cfg    Config
	logger *slog.Logger
}

// Open opens the device named in cfg.
func Open(cfg Config, logger *slog.Logger) (*Webcam, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.Device, err)
	}

	w := &Webcam{cap: vc, cfg: cfg, logger: logger.With("component", "camera", "device", cfg.Device)}
	w.setProps(cfg)
	w.logger.Info("camera opened",
		"width", int(vc.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(vc.Get(gocv.VideoCaptureFrameHeight)),
	)
	return w, nil
}

func (w *Webcam) setProps(cfg Config) {
	w.cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	w.cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	w.cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
}

// Apply changes capture parameters on the open device. Changing the device
// index requires reopening and is rejected.
func (w *Webcam) Apply(cfg Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return ErrClosed
	}
	if cfg.Device != w.cfg.Device {
		return fmt.Errorf("camera: device change %d -> %d requires restart", w.cfg.Device, cfg.Device)
	}
	w.setProps(cfg)
	w.cfg = cfg
	return nil
}

// CaptureFrame reads one frame and returns it JPEG-encoded.
func (w *Webcam) CaptureFrame() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return nil, ErrClosed
	}

	img := gocv.NewMat()
	defer img.Close()
	if ok := w.cap.Read(&img); !ok || img.Empty() {
		return nil, errors.New("camera: empty frame")
	}

	if w.cfg.Mirror {
		gocv.Flip(img, &img, 1)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{int(gocv.IMWriteJpegQuality), w.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Stream captures at the configured framerate until ctx is cancelled.
// Consecutive read failures beyond a small budget end the stream.
func (w *Webcam) Stream(ctx context.Context, emit func(inference.Frame)) error {
	w.mu.Lock()
	fps := w.cfg.Framerate
	w.mu.Unlock()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	const maxFailures = 30
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		jpeg, err := w.CaptureFrame()
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return err
			}
			failures++
			if failures >= maxFailures {
				return fmt.Errorf("camera: %d consecutive read failures: %w", failures, err)
			}
			continue
		}
		failures = 0
		emit(inference.Frame{Image: jpeg, CapturedAt: time.Now()})
	}
}

// Close releases the device. Closing twice is a no-op.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return nil
	}
	err := w.cap.Close()
	w.cap = nil
	return err
}
