package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-vibewave/pkg/mood"
)

type commandKind int

const (
	cmdStartCapture commandKind = iota
	cmdStopCapture
	cmdStartScan
	cmdCancelScan
	cmdReset
	cmdSetConfig
)

type command struct {
	kind commandKind
	scan time.Duration
	cfg  Config
	ack  chan error
}

// Engine owns the smoother, capture cycle and scan and advances them from a
// single goroutine. Predictions and control calls are messages to that
// goroutine; readers see published snapshots.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	preds   chan mood.Prediction
	cmds    chan command
	done    chan struct{}
	started atomic.Bool

	state   atomic.Pointer[State]
	dropped atomic.Uint64

	subMu   sync.Mutex
	subs    map[int]chan State
	nextSub int

	now   func() time.Time
	newID func() uuid.UUID

	// Owned by the Run goroutine.
	smoother *Smoother
	capture  *CaptureCycle
	scan     *Scan
	live     LiveView
	current  mood.Estimate
}

// NewEngine creates an engine. Call Run to start it.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		cfg:      cfg,
		logger:   logger.With("component", "aggregator.engine"),
		preds:    make(chan mood.Prediction, cfg.QueueSize),
		cmds:     make(chan command),
		done:     make(chan struct{}),
		subs:     make(map[int]chan State),
		now:      time.Now,
		newID:    uuid.New,
		smoother: NewSmoother(cfg.SmoothingHorizon, cfg.ConfidenceFloor),
		capture:  NewCaptureCycle(cfg.CaptureInterval),
		scan:     NewScan(cfg.ConfidenceFloor),
		current:  mood.Estimate{Mood: mood.Neutral},
	}
	e.capture.newID = func() uuid.UUID { return e.newID() }
	e.state.Store(e.snapshot())
	return e, nil
}

// Run processes predictions, commands and ticks until ctx is cancelled.
// It must be called exactly once.
func (e *Engine) Run(ctx context.Context) {
	if !e.started.CompareAndSwap(false, true) {
		e.logger.Warn("engine already running")
		return
	}
	defer e.closeSubscribers()
	defer close(e.done)

	var (
		captureTicker, scanTicker *time.Ticker
		captureC, scanC           <-chan time.Time
	)
	stopCapture := func() {
		if captureTicker != nil {
			captureTicker.Stop()
			captureTicker, captureC = nil, nil
		}
	}
	stopScan := func() {
		if scanTicker != nil {
			scanTicker.Stop()
			scanTicker, scanC = nil, nil
		}
	}
	defer stopCapture()
	defer stopScan()

	e.logger.Info("aggregator started",
		"horizon", e.cfg.SmoothingHorizon,
		"floor", e.cfg.ConfidenceFloor,
		"capture_interval", e.capture.Interval(),
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("aggregator stopped")
			return

		case p := <-e.preds:
			e.handlePrediction(p)

		case <-captureC:
			if c, ok := e.capture.Tick(e.now(), e.current); ok {
				e.current = mood.Estimate{Mood: c.Mood, Confidence: c.Confidence}
				e.logger.Debug("captured", "mood", c.Mood, "confidence", c.Confidence, "changed", c.Changed)
			}

		case <-scanC:
			if res, ok := e.scan.Tick(); ok {
				stopScan()
				e.logger.Info("scan finished", "id", e.scan.ID(), "mood", res.Mood, "confidence", res.Confidence)
			}

		case cmd := <-e.cmds:
			var err error
			switch cmd.kind {
			case cmdStartCapture:
				stopCapture()
				c := e.capture.Start(e.now(), e.current)
				e.current = mood.Estimate{Mood: c.Mood, Confidence: c.Confidence}
				captureTicker = time.NewTicker(e.cfg.TickInterval)
				captureC = captureTicker.C

			case cmdStopCapture:
				stopCapture()
				e.capture.Stop()

			case cmdStartScan:
				d := cmd.scan
				if d <= 0 {
					d = e.cfg.ScanDuration
				}
				n := ticks(d)
				if e.scan.Start(n, e.newID()) {
					scanTicker = time.NewTicker(e.cfg.TickInterval)
					scanC = scanTicker.C
					e.logger.Info("scan started", "id", e.scan.ID(), "ticks", n)
				} else {
					err = ErrScanInProgress
				}

			case cmdCancelScan:
				if e.scan.Cancel() {
					stopScan()
					e.logger.Info("scan cancelled", "id", e.scan.ID())
				}

			case cmdReset:
				stopCapture()
				stopScan()
				e.capture.Stop()
				e.scan.Cancel()
				e.smoother.Reset()
				e.live = LiveView{}

			case cmdSetConfig:
				e.applyConfig(cmd.cfg)
				if captureTicker != nil {
					captureTicker.Reset(e.cfg.TickInterval)
				}
				if scanTicker != nil {
					scanTicker.Reset(e.cfg.TickInterval)
				}
			}
			// Publish before acknowledging so the caller reads its own change.
			e.publish()
			cmd.ack <- err
			continue
		}

		e.publish()
	}
}

func (e *Engine) handlePrediction(p mood.Prediction) {
	// Buffers are ordered by arrival, not by when the frame was taken.
	p.Timestamp = e.now()

	e.smoother.Push(p)
	e.capture.Add(p)
	e.scan.Add(p)

	// The live view only drives the current mood while the capture cycle is idle.
	if e.capture.Running() {
		e.live.Samples = e.smoother.Len()
		return
	}
	if est, ok := e.smoother.Estimate(); ok {
		e.live = LiveView{
			Active:     true,
			Mood:       est.Mood,
			Confidence: est.Confidence,
			Samples:    e.smoother.Len(),
		}
		e.current = est
	}
}

func (e *Engine) applyConfig(cfg Config) {
	e.cfg.SmoothingHorizon = cfg.SmoothingHorizon
	e.cfg.ConfidenceFloor = cfg.ConfidenceFloor
	e.cfg.CaptureInterval = cfg.CaptureInterval
	e.cfg.ScanDuration = cfg.ScanDuration
	e.cfg.TickInterval = cfg.TickInterval

	e.smoother.SetHorizon(cfg.SmoothingHorizon)
	e.smoother.SetFloor(cfg.ConfidenceFloor)
	e.scan.SetFloor(cfg.ConfidenceFloor)
	e.capture.SetInterval(cfg.CaptureInterval)

	e.logger.Info("config updated",
		"horizon", cfg.SmoothingHorizon,
		"floor", cfg.ConfidenceFloor,
		"capture_interval", e.capture.Interval(),
	)
}

// Submit queues a prediction without blocking. It returns false if the
// prediction was dropped because the queue is full or the engine stopped.
func (e *Engine) Submit(p mood.Prediction) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.preds <- p:
		return true
	default:
		e.dropped.Add(1)
		return false
	}
}

// StartCapture starts (or restarts) the periodic capture cycle and takes one
// capture immediately.
func (e *Engine) StartCapture(ctx context.Context) error {
	return e.send(ctx, command{kind: cmdStartCapture})
}

// StopCapture halts the capture cycle. Its ticker is stopped when this returns.
func (e *Engine) StopCapture(ctx context.Context) error {
	return e.send(ctx, command{kind: cmdStopCapture})
}

// StartScan begins a timed scan. A non-positive duration uses the configured
// default. Returns ErrScanInProgress if a scan is already running.
func (e *Engine) StartScan(ctx context.Context, d time.Duration) error {
	return e.send(ctx, command{kind: cmdStartScan, scan: d})
}

// CancelScan discards a running scan. It is a no-op otherwise.
func (e *Engine) CancelScan(ctx context.Context) error {
	return e.send(ctx, command{kind: cmdCancelScan})
}

// Reset stops capture and scan and clears the rolling buffer. Capture
// history and the current mood are kept.
func (e *Engine) Reset(ctx context.Context) error {
	return e.send(ctx, command{kind: cmdReset})
}

// SetConfig validates cfg and applies it to the running engine. QueueSize
// cannot change after construction and is ignored.
func (e *Engine) SetConfig(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return e.send(ctx, command{kind: cmdSetConfig, cfg: cfg})
}

func (e *Engine) send(ctx context.Context, cmd command) error {
	cmd.ack = make(chan error, 1)
	select {
	case e.cmds <- cmd:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.ack:
		return err
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the latest snapshot.
func (e *Engine) State() State {
	s := *e.state.Load()
	s.Dropped = e.dropped.Load()
	return s
}

// Subscribe returns a channel that receives every published snapshot. A slow
// subscriber only sees the latest one. The cancel func unsubscribes; the
// channel is closed on cancel or when Run exits.
func (e *Engine) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	ch <- e.State()

	e.subMu.Lock()
	select {
	case <-e.done:
		e.subMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subMu.Lock()
			defer e.subMu.Unlock()
			if c, ok := e.subs[id]; ok {
				delete(e.subs, id)
				close(c)
			}
		})
	}
}

func (e *Engine) snapshot() *State {
	s := &State{
		Current: e.current,
		Live:    e.live,
		Capture: CaptureView{
			Running:  e.capture.Running(),
			Interval: e.capture.Interval(),
			NextIn:   e.capture.NextIn(),
			Pending:  e.capture.Pending(),
			History:  e.capture.History(),
		},
		Scan: ScanView{
			ID:        e.scan.ID(),
			State:     e.scan.State(),
			Duration:  e.scan.Duration(),
			Remaining: e.scan.Remaining(),
			Samples:   e.scan.Samples(),
		},
		Config:    e.cfg,
		Dropped:   e.dropped.Load(),
		UpdatedAt: e.now(),
	}
	if last, ok := e.capture.Last(); ok {
		s.Capture.Last = &last
	}
	if res, ok := e.scan.Result(); ok {
		s.Scan.Result = &res
	}
	return s
}

func (e *Engine) publish() {
	s := e.snapshot()
	e.state.Store(s)

	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- *s:
			continue
		default:
		}
		// Replace the stale snapshot with the newest.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- *s:
		default:
		}
	}
}

func (e *Engine) closeSubscribers() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}
