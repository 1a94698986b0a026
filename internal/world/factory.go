package world

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

const DefaultNamePrefix = "NPC_"

// ValidationError rejects a single creation request. It never reaches the
// worker loops.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Factory builds entities for one map size and hands out generated names.
type Factory struct {
	bounds     Bounds
	namePrefix string
	counter    uint32
}

func NewFactory(bounds Bounds, namePrefix string) *Factory {
	if namePrefix == "" {
		namePrefix = DefaultNamePrefix
	}

	return &Factory{bounds: bounds, namePrefix: namePrefix}
}

func (f *Factory) Bounds() Bounds { return f.bounds }

// Create validates the request and returns a live entity.
func (f *Factory) Create(kindName, name string, x, y int) (*Entity, error) {
	kind, ok := ParseKind(kindName)
	if !ok {
		return nil, &ValidationError{Field: "kind", Value: kindName, Reason: "must be Orc, Bear or Squirrel"}
	}

	// Roster lines are whitespace separated
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return nil, &ValidationError{Field: "name", Value: name, Reason: "must be a single non-empty word"}
	}

	if x < 0 || x >= f.bounds.Width {
		return nil, &ValidationError{Field: "x", Value: strconv.Itoa(x), Reason: fmt.Sprintf("outside [0,%d)", f.bounds.Width)}
	}

	if y < 0 || y >= f.bounds.Height {
		return nil, &ValidationError{Field: "y", Value: strconv.Itoa(y), Reason: fmt.Sprintf("outside [0,%d)", f.bounds.Height)}
	}

	return newEntity(kind, name, x, y, f.bounds), nil
}

// NextName returns prefix + a process-unique sequence number.
func (f *Factory) NextName() string {
	id := atomic.AddUint32(&f.counter, 1)
	return f.namePrefix + strconv.FormatUint(uint64(id), 10)
}

// CreateRandom picks a uniform kind and position and a generated name.
func (f *Factory) CreateRandom(rng Rand) *Entity {
	kind := Kinds[rng.Intn(len(Kinds))]
	x := rng.Intn(f.bounds.Width)
	y := rng.Intn(f.bounds.Height)

	return newEntity(kind, f.NextName(), x, y, f.bounds)
}

// Populate creates n random entities for the initial world.
func (f *Factory) Populate(n int, rng Rand) []*Entity {
	out := make([]*Entity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.CreateRandom(rng))
	}

	return out
}
