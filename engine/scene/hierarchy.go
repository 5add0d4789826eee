package scene

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/google/uuid"
)

// Hierarchy is the parent/children relation between scene entities. Both directions are
// kept and only SetParent, RemoveParent and Detach change them, so for every child c
// with parent p, c appears exactly once in Children(p).
//
// Hierarchy is not safe for concurrent use; Scene serializes access to its own.
type Hierarchy struct {
	parents  map[uuid.UUID]uuid.UUID
	children map[uuid.UUID][]uuid.UUID
}

// NewHierarchy returns an empty Hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		parents:  make(map[uuid.UUID]uuid.UUID),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Clone returns an independent copy of h.
func (h *Hierarchy) Clone() *Hierarchy {
	c := &Hierarchy{
		parents:  maps.Clone(h.parents),
		children: make(map[uuid.UUID][]uuid.UUID, len(h.children)),
	}
	for p, kids := range h.children {
		c.children[p] = slices.Clone(kids)
	}
	return c
}

// SetParent makes parent the parent of child, detaching child from any previous parent.
// Setting the current parent again changes nothing.
//
// Parameters:
//   - child: the entity to re-parent
//   - parent: the new parent
//
// Returns:
//   - error: ErrSelfParent or ErrCyclicHierarchy; the hierarchy is unchanged on error
func (h *Hierarchy) SetParent(child, parent uuid.UUID) error {
	if child == parent {
		return fmt.Errorf("set parent of %s: %w", child, common.ErrSelfParent)
	}
	if h.IsDescendantOf(parent, child) {
		return fmt.Errorf("set parent of %s to its descendant %s: %w", child, parent, common.ErrCyclicHierarchy)
	}

	if old, ok := h.parents[child]; ok {
		if old == parent {
			return nil
		}
		h.unlink(old, child)
	}
	h.parents[child] = parent
	if !slices.Contains(h.children[parent], child) {
		h.children[parent] = append(h.children[parent], child)
	}
	return nil
}

// RemoveParent makes child a root. No-op if it has no parent.
func (h *Hierarchy) RemoveParent(child uuid.UUID) {
	old, ok := h.parents[child]
	if !ok {
		return
	}
	delete(h.parents, child)
	h.unlink(old, child)
}

// Detach removes entity from the hierarchy entirely. Its children become roots.
func (h *Hierarchy) Detach(entity uuid.UUID) {
	h.RemoveParent(entity)
	for _, c := range h.children[entity] {
		delete(h.parents, c)
	}
	delete(h.children, entity)
}

func (h *Hierarchy) unlink(parent, child uuid.UUID) {
	kids := slices.DeleteFunc(h.children[parent], func(id uuid.UUID) bool { return id == child })
	if len(kids) == 0 {
		delete(h.children, parent)
		return
	}
	h.children[parent] = kids
}

// Parent returns the parent of child and whether it has one.
func (h *Hierarchy) Parent(child uuid.UUID) (uuid.UUID, bool) {
	p, ok := h.parents[child]
	return p, ok
}

// Children returns a copy of parent's children in insertion order.
func (h *Hierarchy) Children(parent uuid.UUID) []uuid.UUID {
	return slices.Clone(h.children[parent])
}

// Ancestors returns the chain of parents of entity, nearest first.
func (h *Hierarchy) Ancestors(entity uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for p, ok := h.parents[entity]; ok; p, ok = h.parents[p] {
		out = append(out, p)
		if len(out) > len(h.parents) {
			panic("scene: hierarchy contains a cycle")
		}
	}
	return out
}

// IsDescendantOf reports whether ancestor is a strict ancestor of entity.
func (h *Hierarchy) IsDescendantOf(entity, ancestor uuid.UUID) bool {
	for p, ok := h.parents[entity]; ok; p, ok = h.parents[p] {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Len returns the number of entities that have a parent.
func (h *Hierarchy) Len() int {
	return len(h.parents)
}
