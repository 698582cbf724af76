// Package session connects a frame source to the analyzer and the
// aggregation engine.
//
// Frames are throttled to a minimum interval and analyzed on a bounded set of
// worker goroutines. A frame that arrives too soon or while every worker is
// busy is dropped, never queued.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/teslashibe/go-vibewave/pkg/inference"
	"github.com/teslashibe/go-vibewave/pkg/mood"
)

// FrameSource delivers frames to emit until ctx is cancelled or the source
// fails. emit never blocks.
type FrameSource interface {
	Stream(ctx context.Context, emit func(inference.Frame)) error
}

// Analyzer produces a result for one frame.
type Analyzer interface {
	Analyze(ctx context.Context, f inference.Frame) inference.Result
}

// Sink receives predictions. Implemented by aggregator.Engine.
type Sink interface {
	Submit(p mood.Prediction) bool
	Reset(ctx context.Context) error
}

// Config holds the session tunables.
type Config struct {
	// MinInterval is the minimum time between analyzed frames.
	MinInterval time.Duration `toml:"min_interval" validate:"gt=0"`

	// Workers bounds concurrent analyses.
	Workers int `toml:"workers" validate:"gte=1,lte=64"`
}

// DefaultConfig returns the production defaults: roughly 120 analyses per
// second on two workers.
func DefaultConfig() Config {
	return Config{
		MinInterval: 8 * time.Millisecond,
		Workers:     2,
	}
}

var validate = validator.New()

// Validate checks the config.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("session: invalid config: %w", err)
	}
	return nil
}

// ErrAlreadyRunning is returned by Start on a running session.
var ErrAlreadyRunning = errors.New("session: already running")

// Stats counts what happened to offered frames.
type Stats struct {
	Offered   uint64 `json:"offered"`
	Throttled uint64 `json:"throttled"` // arrived within MinInterval of the last accepted frame
	Busy      uint64 `json:"busy"`      // every worker was occupied
	Analyzed  uint64 `json:"analyzed"`  // prediction delivered to the sink
	Rejected  uint64 `json:"rejected"`  // session stopped, or the sink refused the prediction
}

// Session runs the frame pipeline.
type Session struct {
	cfg      Config
	source   FrameSource
	analyzer Analyzer
	sink     Sink
	logger   *slog.Logger
	now      func() time.Time

	limiter *rate.Limiter
	sem     chan struct{}
	workers sync.WaitGroup

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
	workCtx  context.Context
	streamWG sync.WaitGroup

	offered, throttled, busy, analyzed, rejected atomic.Uint64
}

// New creates a session. source may be nil when frames are pushed with Offer.
func New(cfg Config, source FrameSource, analyzer Analyzer, sink Sink, logger *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if analyzer == nil || sink == nil {
		return nil, errors.New("session: analyzer and sink are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:      cfg,
		source:   source,
		analyzer: analyzer,
		sink:     sink,
		logger:   logger.With("component", "session"),
		now:      time.Now,
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		sem:      make(chan struct{}, cfg.Workers),
	}, nil
}

// Start begins streaming from the source. It returns immediately.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.workCtx = ctx
	s.done = make(chan struct{})
	s.err = nil

	if s.source == nil {
		s.logger.Info("session started without a source")
		return nil
	}

	done := s.done
	s.streamWG.Add(1)
	go func() {
		defer s.streamWG.Done()
		defer close(done)
		err := s.source.Stream(ctx, func(f inference.Frame) { s.Offer(f) })
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("frame source failed", "error", err)
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}()

	s.logger.Info("session started", "min_interval", s.cfg.MinInterval, "workers", s.cfg.Workers)
	return nil
}

// Done is closed when the source stops streaming. Nil before Start or when
// running without a source.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return nil
	}
	return s.done
}

// Err returns the error the source stopped with, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Offer submits one frame for analysis. It reports whether the frame was
// accepted; frames arriving faster than MinInterval, while all workers are
// busy, or while the session is stopped are dropped.
func (s *Session) Offer(f inference.Frame) bool {
	s.offered.Add(1)

	if !s.limiter.Allow() {
		s.throttled.Add(1)
		return false
	}

	select {
	case s.sem <- struct{}{}:
	default:
		s.busy.Add(1)
		return false
	}

	// Registering the worker under mu orders it before Stop's Wait.
	s.mu.Lock()
	ctx := s.workCtx
	if ctx == nil || ctx.Err() != nil {
		s.mu.Unlock()
		<-s.sem
		s.rejected.Add(1)
		return false
	}
	s.workers.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.workers.Done()
		defer func() { <-s.sem }()
		s.analyze(ctx, f)
	}()
	return true
}

func (s *Session) analyze(ctx context.Context, f inference.Frame) {
	res := s.analyzer.Analyze(ctx, f)

	// A session that stopped mid-analysis must not feed the next one.
	if ctx.Err() != nil {
		return
	}

	p := mood.NewPrediction(res.Mood, res.Confidence, s.now())
	if !s.sink.Submit(p) {
		s.rejected.Add(1)
		return
	}
	s.analyzed.Add(1)
}

// Stop cancels the source and in-flight analyses, waits for them, and resets
// the sink so no stale prediction carries over.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.workCtx = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.streamWG.Wait()
	s.workers.Wait()

	if err := s.sink.Reset(ctx); err != nil {
		return fmt.Errorf("reset sink: %w", err)
	}
	s.logger.Info("session stopped", "stats", s.Stats())
	return nil
}

// Stats returns a snapshot of the frame counters.
func (s *Session) Stats() Stats {
	return Stats{
		Offered:   s.offered.Load(),
		Throttled: s.throttled.Load(),
		Busy:      s.busy.Load(),
		Analyzed:  s.analyzed.Load(),
		Rejected:  s.rejected.Load(),
	}
}
