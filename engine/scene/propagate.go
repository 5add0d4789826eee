package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/Carmen-Shannon/oxy-pose/engine/transform"
	"github.com/google/uuid"
)

// TransformLookup resolves an entity to its layered transform. The bool is false for
// entities without one.
type TransformLookup func(id uuid.UUID) (*transform.EntityTransform, bool)

// Propagate computes the world transform of id by folding its synced transform through
// the world layer of every ancestor, nearest first:
//
//	pos   = w.Position + w.Rotation.Rotate(pos ⊙ w.Scale)
//	rot   = w.Rotation · rot
//	scale = w.Scale ⊙ scale
//
// Ancestors without a transform are skipped. The fold matches the composed matrix
// product whenever ancestor scales are uniform.
//
// Parameters:
//   - h: the hierarchy to walk
//   - lookup: resolves entities to transforms
//   - id: the entity to place
//
// Returns:
//   - transform.Transform: the world transform
//   - error: ErrUnknownEntity if id has no transform
func Propagate(h *Hierarchy, lookup TransformLookup, id uuid.UUID) (transform.Transform, error) {
	et, ok := lookup(id)
	if !ok {
		return transform.Transform{}, fmt.Errorf("propagate %s: %w", id, common.ErrUnknownEntity)
	}

	out := et.Sync()
	for _, ancestor := range h.Ancestors(id) {
		at, ok := lookup(ancestor)
		if !ok {
			continue
		}
		w := at.World()
		out.Position = w.Position.Add(w.Rotation.Rotate(common.MulElem3d(out.Position, w.Scale)))
		out.Rotation = w.Rotation.Mul(out.Rotation)
		out.Scale = common.MulElem3d(w.Scale, out.Scale)
	}
	return out, nil
}
