// Package registry holds the ordered set of entities the turn resolver works
// on. Order is spawn order and is never re-sorted.
package registry

import "github.com/nathoo/moodgrid/types"

// Registry is an ordered entity collection.
type Registry struct {
	entities []*types.Entity
}

// New creates an empty registry with room for n entities.
func New(n int) *Registry {
	return &Registry{entities: make([]*types.Entity, 0, n)}
}

// Add appends an entity and assigns its ID (its index).
func (r *Registry) Add(e *types.Entity) *types.Entity {
	e.ID = len(r.entities)
	r.entities = append(r.entities, e)
	return e
}

// All returns the entities in registry order. The slice is shared.
func (r *Registry) All() []*types.Entity {
	return r.entities
}

// Len returns the number of entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// Get returns the entity with the given ID, or nil.
func (r *Registry) Get(id int) *types.Entity {
	if id < 0 || id >= len(r.entities) {
		return nil
	}
	return r.entities[id]
}

// Player returns the first player-controlled entity, or nil.
func (r *Registry) Player() *types.Entity {
	for _, e := range r.entities {
		if e.ControlledByPlayer {
			return e
		}
	}
	return nil
}

// At returns every entity at p in registry order, dead ones included.
func (r *Registry) At(p types.Vec) []*types.Entity {
	var out []*types.Entity
	for _, e := range r.entities {
		if e.Pos == p {
			out = append(out, e)
		}
	}
	return out
}

// OthersAt returns every entity at p except self.
func (r *Registry) OthersAt(p types.Vec, self *types.Entity) []*types.Entity {
	var out []*types.Entity
	for _, e := range r.entities {
		if e != self && e.Pos == p {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entities satisfy pred.
func (r *Registry) Count(pred func(*types.Entity) bool) int {
	n := 0
	for _, e := range r.entities {
		if pred(e) {
			n++
		}
	}
	return n
}

// Clear drops every entity.
func (r *Registry) Clear() {
	for i := range r.entities {
		r.entities[i] = nil
	}
	r.entities = r.entities[:0]
}

// Clone returns a deep copy.
func (r *Registry) Clone() *Registry {
	c := New(len(r.entities))
	for _, e := range r.entities {
		cp := *e
		c.entities = append(c.entities, &cp)
	}
	return c
}
