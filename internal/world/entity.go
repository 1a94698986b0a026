package world

import (
	"math"
	"sync"

	"github.com/google/uuid"
)

const (
	DefaultWidth  = 100
	DefaultHeight = 100
)

// Bounds is the size of the map; valid cells are [0,Width) x [0,Height).
type Bounds struct {
	Width  int
	Height int
}

func DefaultBounds() Bounds {
	return Bounds{Width: DefaultWidth, Height: DefaultHeight}
}

func (b Bounds) Contains(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Rand is the subset of *rand.Rand the simulation draws from.
type Rand interface {
	Intn(n int) int
}

// Record is a point-in-time copy of an entity, safe to hand out.
type Record struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Alive bool   `json:"alive"`
}

// Entity is shared between the movement, combat and render loops.
// mu guards x, y and alive together; name and kind never change.
type Entity struct {
	id     uuid.UUID
	name   string
	kind   Kind
	bounds Bounds

	mu    sync.RWMutex
	x     int
	y     int
	alive bool
}

func newEntity(kind Kind, name string, x, y int, bounds Bounds) *Entity {
	return &Entity{
		id:     uuid.New(),
		name:   name,
		kind:   kind,
		bounds: bounds,
		x:      x,
		y:      y,
		alive:  true,
	}
}

func (e *Entity) ID() uuid.UUID { return e.id }
func (e *Entity) Name() string  { return e.name }
func (e *Entity) Kind() Kind    { return e.kind }

func (e *Entity) Position() (int, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.x, e.y
}

func (e *Entity) IsAlive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alive
}

// Move shifts the entity by (dx, dy). Steps that would leave the map are
// dropped and the entity stays put. Dead entities never move.
func (e *Entity) Move(dx, dy int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.alive {
		return
	}

	nx, ny := e.x+dx, e.y+dy
	if e.bounds.Contains(nx, ny) {
		e.x = nx
		e.y = ny
	}
}

// MoveRandom draws dx and dy independently from {-1, 0, 1}.
func (e *Entity) MoveRandom(rng Rand) {
	if !e.IsAlive() {
		return
	}

	dx := rng.Intn(3) - 1
	dy := rng.Intn(3) - 1
	e.Move(dx, dy)
}

// Kill marks the entity dead. Safe to call repeatedly; only the first call
// reports true.
func (e *Entity) Kill() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasAlive := e.alive
	e.alive = false
	return wasAlive
}

func (e *Entity) DistanceTo(x, y int) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	dx := float64(e.x - x)
	dy := float64(e.y - y)
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceToEntity samples other's position under its own lock, then ours
// under ours. The two reads are not atomic as a pair.
func (e *Entity) DistanceToEntity(other *Entity) float64 {
	ox, oy := other.Position()
	return e.DistanceTo(ox, oy)
}

// Symbol is the map glyph, or a blank once the entity is dead.
func (e *Entity) Symbol() byte {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.alive {
		return ' '
	}

	return e.kind.Symbol()
}

func (e *Entity) Record() Record {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Record{
		ID:    e.id.String(),
		Kind:  e.kind.String(),
		Name:  e.name,
		X:     e.x,
		Y:     e.y,
		Alive: e.alive,
	}
}
