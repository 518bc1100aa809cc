package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/worldsim/internal/game/skill"
	"github.com/udisondev/worldsim/internal/model"
	"github.com/udisondev/worldsim/internal/unitmod"
)

// ErrUnitNotFound is returned for an objectID that is not registered.
var ErrUnitNotFound = errors.New("unit not registered")

type tracked struct {
	unit    *model.Unit
	effects *skill.EffectManager
}

// shard owns a subset of units. All access to its units happens under mu,
// so a unit is never touched by two goroutines at once.
type shard struct {
	mu    sync.Mutex
	units map[uint32]*tracked
}

// UnitSnapshot holds the persistable modifiers of one unit.
type UnitSnapshot struct {
	ObjectID uint32
	Entries  []unitmod.Entry
}

// TickManager advances effect timers of every registered unit.
// Units are sharded by objectID; each tick runs one goroutine per shard.
type TickManager struct {
	interval  time.Duration
	shards    []*shard
	unitCount atomic.Int32
}

// NewTickManager creates a tick manager with workers shards (minimum 1).
func NewTickManager(interval time.Duration, workers int) *TickManager {
	workers = max(workers, 1)
	m := &TickManager{
		interval: interval,
		shards:   make([]*shard, workers),
	}
	for i := range m.shards {
		m.shards[i] = &shard{units: make(map[uint32]*tracked)}
	}
	return m
}

func (m *TickManager) shardFor(objectID uint32) *shard {
	return m.shards[objectID%uint32(len(m.shards))]
}

// Register adds a unit. A nil effects creates a fresh EffectManager.
// Registering an objectID twice replaces the previous unit.
func (m *TickManager) Register(u *model.Unit, effects *skill.EffectManager) *skill.EffectManager {
	if effects == nil {
		effects = skill.NewEffectManager(u)
	}
	s := m.shardFor(u.ObjectID())

	s.mu.Lock()
	if _, exists := s.units[u.ObjectID()]; !exists {
		m.unitCount.Add(1)
	}
	s.units[u.ObjectID()] = &tracked{unit: u, effects: effects}
	s.mu.Unlock()

	slog.Debug("unit registered",
		"objectID", u.ObjectID(),
		"name", u.Name())
	return effects
}

// Unregister removes a unit and ends all its effects.
func (m *TickManager) Unregister(objectID uint32) {
	s := m.shardFor(objectID)

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.units[objectID]
	if !ok {
		return
	}
	delete(s.units, objectID)
	m.unitCount.Add(-1)

	t.effects.ExitAll()
	if n := t.unit.Mods().LedgerMismatches(); n > 0 {
		slog.Warn("unit left with unbalanced modifiers",
			"objectID", objectID,
			"mismatches", n,
			"outstanding", t.unit.Mods().LedgerOutstanding())
	}

	slog.Debug("unit unregistered", "objectID", objectID)
}

// Do runs fn with exclusive access to a registered unit.
// Mutations from outside the tick loop must go through Do.
func (m *TickManager) Do(objectID uint32, fn func(*model.Unit, *skill.EffectManager)) error {
	s := m.shardFor(objectID)

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.units[objectID]
	if !ok {
		return fmt.Errorf("unit %d: %w", objectID, ErrUnitNotFound)
	}
	fn(t.unit, t.effects)
	return nil
}

// Count returns number of registered units.
func (m *TickManager) Count() int {
	return int(m.unitCount.Load())
}

// Start runs the tick loop (blocks until context is canceled).
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("world tick manager started",
		"interval", m.interval,
		"workers", len(m.shards))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("world tick manager stopping")
			return ctx.Err()

		case now := <-ticker.C:
			delta := int32(now.Sub(last).Milliseconds())
			last = now
			if err := m.TickOnce(ctx, delta); err != nil {
				return err
			}
		}
	}
}

// TickOnce advances every unit by deltaMs, one goroutine per shard.
func (m *TickManager) TickOnce(ctx context.Context, deltaMs int32) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.shards {
		g.Go(func() error {
			return s.tick(gctx, deltaMs)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("world tick: %w", err)
	}
	return nil
}

func (s *shard) tick(ctx context.Context, deltaMs int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.units {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.effects.Tick(deltaMs)
	}
	return nil
}

// Snapshot collects the permanent modifiers of every unit.
func (m *TickManager) Snapshot() []UnitSnapshot {
	out := make([]UnitSnapshot, 0, m.Count())
	for _, s := range m.shards {
		s.mu.Lock()
		for id, t := range s.units {
			out = append(out, UnitSnapshot{ObjectID: id, Entries: t.unit.PermanentModifiers()})
		}
		s.mu.Unlock()
	}
	return out
}
