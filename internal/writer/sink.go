package writer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rickgao/nft-pricewatch/internal/model"
)

// Sink persists one snapshot.
type Sink interface {
	Write(ctx context.Context, snap model.Snapshot) error
}

// Mirror is a best-effort secondary sink.
type Mirror struct {
	Name string
	Sink Sink
}

// MirrorRecorder counts mirror failures.
type MirrorRecorder interface {
	MirrorError(name string)
}

// FanoutStats counts fanout outcomes.
type FanoutStats struct {
	Writes        int64
	PrimaryErrors int64
	MirrorErrors  int64
}

// Fanout writes the primary sink, then every mirror.
type Fanout struct {
	primary  Sink
	mirrors  []Mirror
	recorder MirrorRecorder
	logger   *slog.Logger

	mu    sync.Mutex
	stats FanoutStats
}

// NewFanout creates a Fanout. recorder may be nil.
func NewFanout(primary Sink, mirrors []Mirror, recorder MirrorRecorder, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{
		primary:  primary,
		mirrors:  mirrors,
		recorder: recorder,
		logger:   logger,
	}
}

// Write persists snap to the primary sink and, if that succeeded, to every
// mirror. Only a primary failure is returned.
func (f *Fanout) Write(ctx context.Context, snap model.Snapshot) error {
	if err := f.primary.Write(ctx, snap); err != nil {
		f.count(func(s *FanoutStats) { s.PrimaryErrors++ })
		return err
	}
	f.count(func(s *FanoutStats) { s.Writes++ })

	for _, m := range f.mirrors {
		if err := m.Sink.Write(ctx, snap); err != nil {
			f.logger.Warn("mirror write failed", "mirror", m.Name, "err", err)
			f.count(func(s *FanoutStats) { s.MirrorErrors++ })
			if f.recorder != nil {
				f.recorder.MirrorError(m.Name)
			}
		}
	}
	return nil
}

// Stats returns current counters.
func (f *Fanout) Stats() FanoutStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *Fanout) count(update func(*FanoutStats)) {
	f.mu.Lock()
	update(&f.stats)
	f.mu.Unlock()
}
