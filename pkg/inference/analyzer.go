package inference

import (
	"context"
	"log/slog"

	"github.com/teslashibe/go-vibewave/pkg/detection"
	"github.com/teslashibe/go-vibewave/pkg/face"
	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// Analyzer runs the per-frame fallback order. Safe for concurrent use as long
// as the configured backends are.
type Analyzer struct {
	cfg    Config
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. With no options every frame without
// landmarks yields SourceNone.
func NewAnalyzer(opts ...Option) *Analyzer {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:    cfg,
		logger: logger.With("component", "inference.analyzer"),
	}
}

// Analyze produces a mood estimate for one frame.
func (a *Analyzer) Analyze(ctx context.Context, f Frame) Result {
	if r, ok := a.classify(ctx, f); ok {
		return r
	}
	if r, ok := a.fromLandmarks(ctx, f); ok {
		return r
	}
	if r, ok := a.fromFaceBox(f); ok {
		return r
	}
	return Result{Mood: mood.Neutral, Confidence: 0, Source: SourceNone}
}

// AnalyzeAsync runs Analyze on its own goroutine. The channel receives
// exactly one Result and is then closed.
func (a *Analyzer) AnalyzeAsync(ctx context.Context, f Frame) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- a.Analyze(ctx, f)
	}()
	return out
}

func (a *Analyzer) classify(ctx context.Context, f Frame) (Result, bool) {
	if a.cfg.Classifier == nil || len(f.Image) == 0 {
		return Result{}, false
	}

	cctx := ctx
	if a.cfg.ClassifyTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, a.cfg.ClassifyTimeout)
		defer cancel()
	}

	label, err := a.cfg.Classifier.Classify(cctx, f.Image)
	if err != nil {
		a.logger.Debug("classifier failed, trying landmarks",
			"classifier", a.cfg.Classifier.Name(),
			"error", err,
		)
		return Result{}, false
	}

	return Result{
		Mood:       mood.FromLabel(label.Name),
		Confidence: mood.Clamp(label.Confidence),
		Source:     SourceClassifier,
	}, true
}

func (a *Analyzer) fromLandmarks(ctx context.Context, f Frame) (Result, bool) {
	lm := f.Landmarks
	if lm.Empty() && a.cfg.Landmarks != nil && len(f.Image) > 0 {
		var err error
		lm, err = a.cfg.Landmarks.Landmarks(ctx, f.Image)
		if err != nil {
			a.logger.Debug("landmark extraction failed", "error", err)
			return Result{}, false
		}
	}
	if lm.Empty() {
		return Result{}, false
	}

	est := face.Analyze(lm)
	return Result{Mood: est.Mood, Confidence: est.Confidence, Source: SourceLandmarks}, true
}

func (a *Analyzer) fromFaceBox(f Frame) (Result, bool) {
	if a.cfg.Detector == nil || len(f.Image) == 0 {
		return Result{}, false
	}

	dets, err := a.cfg.Detector.Detect(f.Image)
	if err != nil {
		a.logger.Debug("face detection failed", "error", err)
		return Result{}, false
	}
	best := detection.SelectBest(dets)
	if best == nil {
		return Result{}, false
	}

	// A box carries no expression signal; report a flat low-confidence Neutral.
	return Result{
		Mood:       mood.Neutral,
		Confidence: mood.Clamp(FaceBoxWeight * best.Quality()),
		Source:     SourceFaceBox,
	}, true
}
