// Package capture runs the kiosk cadence: acquire the camera once, then on a fixed
// period encode the current frame, send it for recognition and render the answer.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"attendcam/internal/frame"
	"attendcam/internal/logger"
	"attendcam/internal/presentation"
	"attendcam/internal/recognition"
)

const (
	DefaultInterval = 3 * time.Second
	DefaultWidth    = 1280
	DefaultHeight   = 720
)

// ErrCameraUnavailable ends a session whose camera could not be acquired.
var ErrCameraUnavailable = errors.New("camera unavailable")

// Acquirer grants access to a camera. width and height are a hint only.
type Acquirer interface {
	Acquire(ctx context.Context, width, height int) (frame.Source, error)
}

// AcquirerFunc adapts a function to an Acquirer.
type AcquirerFunc func(ctx context.Context, width, height int) (frame.Source, error)

func (f AcquirerFunc) Acquire(ctx context.Context, width, height int) (frame.Source, error) {
	return f(ctx, width, height)
}

// Encoder turns the current camera frame into a request artifact.
type Encoder interface {
	Encode(src frame.Source) (frame.Artifact, error)
}

// Recognizer sends one artifact to the recognition service.
type Recognizer interface {
	Send(ctx context.Context, artifact frame.Artifact) (recognition.Result, error)
}

// Presenter renders completions and session failures.
type Presenter interface {
	Apply(result recognition.Result, err error)
	Fail(msg string)
}

// Journal records every successful match.
type Journal interface {
	Record(ctx context.Context, identity recognition.Identity) error
}

// Ticker is the subset of time.Ticker the loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the capture period.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithResolution sets the resolution hint passed to the Acquirer.
func WithResolution(width, height int) Option {
	return func(l *Loop) {
		l.width, l.height = width, height
	}
}

// WithJournal records every match in j.
func WithJournal(j Journal) Option {
	return func(l *Loop) { l.journal = j }
}

// WithLogger replaces the default no-op logger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithTicker replaces the ticker factory. Tests use it to drive ticks by hand.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(l *Loop) { l.newTicker = newTicker }
}

// Loop is the capture-transmit-render state machine.
type Loop struct {
	acquirer   Acquirer
	encoder    Encoder
	recognizer Recognizer
	presenter  Presenter
	journal    Journal
	logger     *logger.Logger

	interval  time.Duration
	width     int
	height    int
	newTicker func(time.Duration) Ticker

	state atomic.Int32
	ticks atomic.Uint64
}

// completion is what a finished request hands back to the loop goroutine.
type completion struct {
	tick   uint64
	issued time.Time
	result recognition.Result
	err    error
}

// New creates a Loop. The presenter is only ever called from the goroutine running Run.
func New(acquirer Acquirer, encoder Encoder, recognizer Recognizer, presenter Presenter, opts ...Option) *Loop {
	l := &Loop{
		acquirer:   acquirer,
		encoder:    encoder,
		recognizer: recognizer,
		presenter:  presenter,
		logger:     logger.NewNop(),
		interval:   DefaultInterval,
		width:      DefaultWidth,
		height:     DefaultHeight,
		newTicker:  newTimeTicker,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State reports the current state. Safe for concurrent use.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Ticks reports how many ticks have fired so far.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Run acquires the camera and drives ticks until ctx is cancelled. It returns
// ErrCameraUnavailable without ever starting the timer when the camera cannot be
// acquired, and nil after a normal shutdown.
func (l *Loop) Run(ctx context.Context) error {
	l.setState(AwaitingCamera)

	src, err := l.acquirer.Acquire(ctx, l.width, l.height)
	if err != nil {
		l.setState(CameraFailed)
		l.presenter.Fail(presentation.MsgCameraFailure)
		l.logger.Error("Camera error: %v", err)
		return fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	l.setState(Running)
	l.logger.Info("📹 Camera acquired, capturing every %v", l.interval)

	ticker := l.newTicker(l.interval)
	defer ticker.Stop()

	completions := make(chan completion)
	// issued requests are never cancelled by the loop; only the transport timeout bounds them
	requestCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			l.setState(Stopped)
			l.logger.Info("🛑 Capture loop stopped after %d tick(s)", l.ticks.Load())
			return nil

		case <-ticker.C():
			l.tick(ctx, requestCtx, src, completions)

		case c := <-completions:
			l.presenter.Apply(c.result, c.err)
			l.logCompletion(c)
		}
	}
}

// tick encodes the current frame on the loop goroutine and hands the request to its
// own goroutine, so a slow request never delays the next tick.
func (l *Loop) tick(loopCtx, requestCtx context.Context, src frame.Source, completions chan<- completion) {
	n := l.ticks.Add(1)

	artifact, err := l.encoder.Encode(src)
	if err != nil {
		if errors.Is(err, frame.ErrSourceNotReady) {
			l.logger.Warning("Tick %d skipped: %v", n, err)
		} else {
			l.logger.Error("Tick %d skipped, encoding failed: %v", n, err)
		}
		return
	}

	issued := time.Now()
	go func() {
		result, err := l.recognizer.Send(requestCtx, artifact)
		if err == nil {
			l.record(requestCtx, n, result)
		}

		select {
		case completions <- completion{tick: n, issued: issued, result: result, err: err}:
		case <-loopCtx.Done():
		}
	}()
}

func (l *Loop) record(ctx context.Context, tick uint64, result recognition.Result) {
	matched, ok := result.(recognition.Matched)
	if !ok || l.journal == nil {
		return
	}
	if err := l.journal.Record(ctx, matched.Identity); err != nil {
		l.logger.Error("Tick %d: failed to record attendance for %s: %v", tick, matched.Name, err)
	}
}

func (l *Loop) logCompletion(c completion) {
	elapsed := time.Since(c.issued).Round(time.Millisecond)

	if c.err != nil {
		var transportErr *recognition.TransportError
		if errors.As(c.err, &transportErr) && transportErr.Message != "" {
			l.logger.Warning("Tick %d failed after %v: %v (service: %s)", c.tick, elapsed, c.err, transportErr.Message)
			return
		}
		l.logger.Warning("Tick %d failed after %v: %v", c.tick, elapsed, c.err)
		return
	}

	switch r := c.result.(type) {
	case recognition.Matched:
		l.logger.Info("Tick %d matched %s (%s) in %v", c.tick, r.Name, r.ID, elapsed)
	case recognition.Unmatched:
		l.logger.Info("Tick %d unmatched in %v", c.tick, elapsed)
	}
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}
