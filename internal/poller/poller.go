package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/nft-pricewatch/internal/aggregator"
	"github.com/rickgao/nft-pricewatch/internal/api"
	"github.com/rickgao/nft-pricewatch/internal/model"
)

// State is the scheduler state.
type State int32

const (
	StateStopped State = iota
	StateCycleRunning
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateCycleRunning:
		return "cycle_running"
	case StateSleeping:
		return "sleeping"
	default:
		return "stopped"
	}
}

// Sink receives each cycle's snapshot.
type Sink interface {
	Write(ctx context.Context, snap model.Snapshot) error
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(context.Context, model.Snapshot) error

func (f SinkFunc) Write(ctx context.Context, s model.Snapshot) error {
	return f(ctx, s)
}

// Recorder observes cycle outcomes. Implementations must be safe for
// concurrent use.
type Recorder interface {
	SourceResult(source string, ok bool)
	CycleResult(d time.Duration, err error)
	StateChanged(state string)
}

type nopRecorder struct{}

func (nopRecorder) SourceResult(string, bool)        {}
func (nopRecorder) CycleResult(time.Duration, error) {}
func (nopRecorder) StateChanged(string)              {}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Sleep after each cycle (default: 8s)
	Commissions aggregator.Commissions
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		Interval:    8 * time.Second,
		Commissions: aggregator.DefaultCommissions(),
	}
}

// ErrAlreadyStarted is returned by Start on a running poller.
var ErrAlreadyStarted = errors.New("poller already started")

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Poller) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// Poller runs fetch, merge and write cycles on a fixed delay.
type Poller struct {
	cfg      Config
	sources  Sources
	sink     Sink
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	state       atomic.Int32
	lastSuccess atomic.Int64 // unix nanos, 0 before the first good cycle

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, sources Sources, sink Sink, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	p := &Poller{
		cfg:      cfg,
		sources:  sources,
		sink:     sink,
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current scheduler state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

// LastSuccess returns when the last cycle completed without error.
func (p *Poller) LastSuccess() time.Time {
	n := p.lastSuccess.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Status reports the state name and last success time for health checks.
func (p *Poller) Status() (string, time.Time) {
	return p.State().String(), p.LastSuccess()
}

func (p *Poller) setState(s State) {
	p.state.Store(int32(s))
	p.recorder.StateChanged(s.String())
}

// Start begins the polling loop. The first cycle runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("poller started", "interval", p.cfg.Interval)
	return nil
}

// Stop cancels the loop and waits for the current cycle to finish.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
		p.setState(StateStopped)
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		_ = p.RunOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		p.setState(StateSleeping)
		timer := time.NewTimer(p.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunOnce runs a single fetch, merge and write cycle. The returned error is
// already logged.
func (p *Poller) RunOnce(ctx context.Context) error {
	p.setState(StateCycleRunning)

	id := uuid.NewString()
	logger := p.logger.With("cycle_id", id)
	start := time.Now()

	err := p.cycle(ctx, logger)
	d := time.Since(start)

	// Shutdown mid-cycle is neither a success nor a failure.
	if err != nil && ctx.Err() != nil {
		logger.Info("cycle cancelled", "duration", d)
		return err
	}
	p.recorder.CycleResult(d, err)
	if err != nil {
		logger.Error("cycle failed", "err", err, "duration", d)
		return err
	}

	p.lastSuccess.Store(p.now().UnixNano())
	return nil
}

func (p *Poller) cycle(ctx context.Context, logger *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			logger.Debug("cycle panic stack", "stack", string(debug.Stack()))
		}
	}()

	results := fetchAll(ctx, p.sources, logger)
	if err := ctx.Err(); err != nil {
		// A cancelled cycle would persist an empty snapshot.
		return err
	}
	for _, source := range api.AllSources {
		p.recorder.SourceResult(source, results.Present(source))
	}

	snap := aggregator.Combine(results.Inputs(), p.cfg.Commissions, p.now())

	if err := p.sink.Write(ctx, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	logger.Info("cycle complete",
		"sources", results.Count(),
		"populated", snap.Populated(),
	)
	return nil
}
