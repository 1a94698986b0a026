package world

import (
	"context"
	"math/rand"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Scrimzay/npcbattle/internal/telemetry"
)

// Intervals between ticks of each worker loop.
type Intervals struct {
	Move   time.Duration
	Combat time.Duration
	Render time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Move:   100 * time.Millisecond,
		Combat: 200 * time.Millisecond,
		Render: time.Second,
	}
}

// Independent RNG streams, one per loop
const (
	streamBootstrap int64 = iota
	streamMove
	streamCombat
)

// NewRand seeds a generator for one stream. A zero seed means wall clock.
// The returned generator must stay on a single goroutine.
func NewRand(seed, stream int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return rand.New(rand.NewSource(seed + stream*7919))
}

// BootstrapRand is the stream used to populate the initial world.
func BootstrapRand(seed int64) *rand.Rand {
	return NewRand(seed, streamBootstrap)
}

type Options struct {
	Bounds    Bounds
	Intervals Intervals
	Seed      int64
	Displays  []Display
	Log       *zap.Logger
}

// Simulation runs the movement, combat and render loops over one registry.
// running is the shared shutdown flag every loop polls.
type Simulation struct {
	bounds    Bounds
	registry  *Registry
	resolver  *Resolver
	displays  []Display
	intervals Intervals
	seed      int64
	log       *zap.Logger
	tracer    trace.Tracer

	running   atomic.Bool
	wg        sync.WaitGroup
	frameTick atomic.Uint64
	lastFrame atomic.Pointer[Frame]
	kills     atomic.Int64
}

func NewSimulation(reg *Registry, resolver *Resolver, opts Options) *Simulation {
	if opts.Bounds == (Bounds{}) {
		opts.Bounds = DefaultBounds()
	}

	def := DefaultIntervals()
	if opts.Intervals.Move <= 0 {
		opts.Intervals.Move = def.Move
	}
	if opts.Intervals.Combat <= 0 {
		opts.Intervals.Combat = def.Combat
	}
	if opts.Intervals.Render <= 0 {
		opts.Intervals.Render = def.Render
	}

	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	return &Simulation{
		bounds:    opts.Bounds,
		registry:  reg,
		resolver:  resolver,
		displays:  opts.Displays,
		intervals: opts.Intervals,
		seed:      opts.Seed,
		log:       opts.Log.Named("sim"),
		tracer:    telemetry.Tracer("world"),
	}
}

func (s *Simulation) Registry() *Registry { return s.registry }
func (s *Simulation) Bounds() Bounds      { return s.bounds }
func (s *Simulation) Running() bool       { return s.running.Load() }
func (s *Simulation) Kills() int64        { return s.kills.Load() }

// LastFrame returns the most recent render, if any tick has run yet.
func (s *Simulation) LastFrame() (Frame, bool) {
	f := s.lastFrame.Load()
	if f == nil {
		return Frame{}, false
	}

	return *f, true
}

// Start launches the three loops. Calling it on a running simulation is a no-op.
func (s *Simulation) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}

	s.log.Info("Simulation started",
		zap.Int("npcs", s.registry.Len()),
		zap.Duration("move", s.intervals.Move),
		zap.Duration("combat", s.intervals.Combat),
		zap.Duration("render", s.intervals.Render),
	)

	s.wg.Add(3)
	go s.loop("movement", s.intervals.Move, streamMove, s.moveTick)
	go s.loop("combat", s.intervals.Combat, streamCombat, s.combatTick)
	go s.loop("render", s.intervals.Render, -1, func(*rand.Rand) { s.renderTick() })
}

// Stop clears the shutdown flag, waits for every loop to notice it, and
// returns the survivors.
func (s *Simulation) Stop() []Record {
	s.running.Store(false)
	s.wg.Wait()

	survivors := s.registry.Survivors()
	s.log.Info("Simulation stopped", zap.Int("survivors", len(survivors)), zap.Int64("kills", s.kills.Load()))
	return survivors
}

// Run starts the simulation and stops it after d, or earlier if ctx ends.
func (s *Simulation) Run(ctx context.Context, d time.Duration) []Record {
	s.Start()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		s.log.Info("Simulation interrupted", zap.Error(ctx.Err()))
	}

	return s.Stop()
}

func (s *Simulation) loop(name string, interval time.Duration, stream int64, tick func(rng *rand.Rand)) {
	defer s.wg.Done()

	var rng *rand.Rand
	if stream >= 0 {
		rng = NewRand(s.seed, stream)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for s.running.Load() {
		<-ticker.C
		if !s.running.Load() {
			return
		}

		s.safeTick(name, func() { tick(rng) })
	}
}

// A panicking tick (usually a sink) is logged and the loop carries on
func (s *Simulation) safeTick(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Panic in tick",
				zap.String("loop", name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	fn()
}

func (s *Simulation) moveTick(rng *rand.Rand) {
	s.registry.Each(func(e *Entity) {
		if e.IsAlive() {
			e.MoveRandom(rng)
		}
	})
}

func (s *Simulation) combatTick(rng *rand.Rand) {
	_, span := s.tracer.Start(context.Background(), "combat.tick")
	defer span.End()

	stats := s.resolver.CombatTick(s.registry, rng)
	s.kills.Add(int64(stats.Kills))

	span.SetAttributes(
		attribute.Int("combat.pairs", stats.Pairs),
		attribute.Int("combat.kills", stats.Kills),
		attribute.Int("combat.removed", stats.Removed),
	)

	if stats.Kills > 0 {
		s.log.Debug("Combat tick", zap.Int("pairs", stats.Pairs), zap.Int("kills", stats.Kills), zap.Int("removed", stats.Removed))
	}
}

func (s *Simulation) renderTick() {
	_, span := s.tracer.Start(context.Background(), "render.tick")
	defer span.End()

	f := s.registry.Render(s.bounds)
	f.Tick = s.frameTick.Add(1)
	s.lastFrame.Store(&f)

	span.SetAttributes(attribute.Int("render.alive", f.Alive), attribute.Int64("render.tick", int64(f.Tick)))

	for _, d := range s.displays {
		d.ShowFrame(f)
	}
}
