// internal/coordinator/coordinator.go
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/east-ups-bridge/internal/decode"
	"github.com/tamzrod/east-ups-bridge/internal/profile"
	"github.com/tamzrod/east-ups-bridge/internal/reader"
	"github.com/tamzrod/east-ups-bridge/internal/telemetry"
)

// CycleReader performs one batched read cycle. Satisfied by *reader.Reader.
type CycleReader interface {
	ReadCycle() (*reader.Frame, error)
	Close() error
}

// Config is the minimal runtime config the coordinator needs.
type Config struct {
	Interval time.Duration
}

// Coordinator drives the read → decode → publish loop on a fixed interval.
// Two states: idle and polling. A tick that lands while a poll is in flight
// is dropped; Modbus RTU is single-master with no pipelining, so overlapping
// reads to the same serial device are never issued.
type Coordinator struct {
	cfg     Config
	prof    *profile.DeviceProfile
	reader  CycleReader
	logger  zerolog.Logger
	metrics telemetry.Collector

	polling atomic.Bool

	mu    sync.RWMutex
	last  *Snapshot
	stale bool

	onSnapshot []func(Snapshot)
	onStale    []func()
}

// New creates a coordinator with immutable config. The last-snapshot state is
// owned here, created at setup and torn down with Close.
func New(cfg Config, prof *profile.DeviceProfile, rdr CycleReader, logger zerolog.Logger, metrics telemetry.Collector) (*Coordinator, error) {
	if prof == nil {
		return nil, errors.New("coordinator: device profile required")
	}
	if rdr == nil {
		return nil, errors.New("coordinator: reader required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("coordinator: interval must be > 0")
	}
	if metrics == nil {
		metrics = telemetry.Noop()
	}
	return &Coordinator{cfg: cfg, prof: prof, reader: rdr, logger: logger, metrics: metrics}, nil
}

// OnSnapshot registers a consumer notified after every published snapshot.
// Consumers observe whole snapshots only, never an interleaving.
// Must be called before Run.
func (c *Coordinator) OnSnapshot(fn func(Snapshot)) {
	c.onSnapshot = append(c.onSnapshot, fn)
}

// OnStale registers a consumer notified when a cycle fails and the last
// snapshot goes stale. Must be called before Run.
func (c *Coordinator) OnStale(fn func()) {
	c.onStale = append(c.onStale, fn)
}

// Last returns the last published snapshot and whether it is stale.
func (c *Coordinator) Last() (Snapshot, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Snapshot{}, false, false
	}
	return *c.last, c.stale, true
}

// Run polls once immediately, then on every interval tick until the context
// is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	c.Poll(time.Now())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.Poll(now)
		}
	}
}

// Poll runs one read+decode cycle unless one is already in flight.
func (c *Coordinator) Poll(now time.Time) {
	if !c.polling.CompareAndSwap(false, true) {
		c.metrics.IncTickSkipped(c.prof.Model)
		c.logger.Debug().Msg("tick skipped, poll in flight")
		return
	}
	defer c.polling.Store(false)

	start := time.Now()
	snap, err := c.pollOnce(now)
	c.metrics.ObserveCycleDuration(c.prof.Model, time.Since(start))

	if err != nil {
		c.markStale(err)
		return
	}

	c.mu.Lock()
	c.last = snap
	c.stale = false
	c.mu.Unlock()

	c.metrics.IncCycle(c.prof.Model)
	c.metrics.SetStale(c.prof.Model, false)
	c.logger.Debug().Int("sensors", snap.Len()).Time("taken_at", snap.TakenAt).Msg("snapshot published")

	for _, fn := range c.onSnapshot {
		fn(*snap)
	}
}

// pollOnce reads every planned span and decodes every spec. All-or-nothing:
// any failure discards the partial result.
func (c *Coordinator) pollOnce(now time.Time) (*Snapshot, error) {
	frame, err := c.reader.ReadCycle()
	if err != nil {
		return nil, err
	}

	values := make(map[string]decode.Value, len(c.prof.Specs))
	for _, spec := range c.prof.Specs {
		words, err := frame.Slice(spec.Table, spec.Address, spec.Width)
		if err != nil {
			return nil, fmt.Errorf("profile/plan mismatch on %s: %w", spec.Key, err)
		}
		decoded, err := decode.Decode(spec, words)
		if err != nil {
			return nil, fmt.Errorf("profile/plan mismatch on %s: %w", spec.Key, err)
		}
		for _, d := range decoded {
			values[d.Key] = d.Value
		}
	}

	return &Snapshot{Model: c.prof.Model, TakenAt: now, values: values}, nil
}

// markStale records a failed cycle. The previous snapshot is kept as last
// known and flagged stale; its values are never touched.
func (c *Coordinator) markStale(err error) {
	var commErr *reader.CommError
	if errors.As(err, &commErr) {
		// Transient. Retried on the next scheduled tick.
		c.metrics.IncCycleFailure(c.prof.Model, "communication")
		c.logger.Warn().Err(err).Msg("poll cycle failed")
	} else {
		// Profile/reader inconsistency is a defect, not a device condition.
		c.metrics.IncCycleFailure(c.prof.Model, "internal")
		c.logger.Error().Err(err).Msg("poll cycle aborted, refusing to publish a corrupt snapshot")
	}

	c.mu.Lock()
	wasStale := c.stale
	c.stale = true
	c.mu.Unlock()

	c.metrics.SetStale(c.prof.Model, true)

	if !wasStale {
		for _, fn := range c.onStale {
			fn()
		}
	}
}

// Close tears the coordinator down and releases the reader's connection.
func (c *Coordinator) Close() error {
	return c.reader.Close()
}
