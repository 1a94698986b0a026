package world

import "sync"

// Registry owns the live population. mu is held for any structural change
// and for the whole of every traversal, so a loop never observes an entity
// being removed halfway through its pass.
//
// Lock order is always registry first, then the entity's own lock.
type Registry struct {
	mu       sync.Mutex
	entities []*Entity
}

func NewRegistry(entities ...*Entity) *Registry {
	r := &Registry{}
	r.entities = append(r.entities, entities...)
	return r
}

func (r *Registry) Add(entities ...*Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append(r.entities, entities...)
}

// Replace swaps the whole population, e.g. after loading a roster.
func (r *Registry) Replace(entities []*Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append([]*Entity(nil), entities...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities)
}

// Snapshot copies the handle slice. The entities themselves stay shared.
func (r *Registry) Snapshot() []*Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Entity(nil), r.entities...)
}

// Each runs fn on every entity while holding the registry lock.
func (r *Registry) Each(fn func(e *Entity)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entities {
		fn(e)
	}
}

// Pass hands fn the collection under the registry lock and, once fn has
// returned, removes every dead entity before releasing it. Removal therefore
// only happens after every use fn made of the entities is finished, and it
// still happens if fn panics.
func (r *Registry) Pass(fn func(entities []*Entity)) (removed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { removed = r.sweepLocked() }()

	fn(r.entities)
	return 0
}

// Sweep removes dead entities.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

func (r *Registry) sweepLocked() int {
	kept := r.entities[:0]
	for _, e := range r.entities {
		if e.IsAlive() {
			kept = append(kept, e)
		}
	}

	removed := len(r.entities) - len(kept)
	// Drop references held past the new length
	for i := len(kept); i < len(r.entities); i++ {
		r.entities[i] = nil
	}
	r.entities = kept

	return removed
}

func (r *Registry) AliveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entities {
		if e.IsAlive() {
			n++
		}
	}

	return n
}

// Records lists every entity still in the registry, dead or alive.
func (r *Registry) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e.Record())
	}

	return out
}

// Survivors lists the alive entities.
func (r *Registry) Survivors() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.entities))
	for _, e := range r.entities {
		if rec := e.Record(); rec.Alive {
			out = append(out, rec)
		}
	}

	return out
}
