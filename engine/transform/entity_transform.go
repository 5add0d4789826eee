package transform

import (
	"sync"
)

// EntityTransform layers an entity's placement. The world layer places the entity in its
// parent's space, the local layer offsets it, and the optional animation layer carries the
// animated pose of the model's skeleton root.
//
// All methods are safe for concurrent use.
type EntityTransform struct {
	mu *sync.RWMutex

	local     Transform
	world     Transform
	animation *Transform
}

// NewEntityTransform creates an EntityTransform with the given local and world layers and
// no animation layer.
func NewEntityTransform(local, world Transform) *EntityTransform {
	return &EntityTransform{
		mu:    &sync.RWMutex{},
		local: local,
		world: world,
	}
}

// NewFromWorld creates an EntityTransform placed at world with an identity local layer.
func NewFromWorld(world Transform) *EntityTransform {
	return NewEntityTransform(NewTransform(), world)
}

func (e *EntityTransform) Local() Transform {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.local
}

func (e *EntityTransform) World() Transform {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.world
}

// Animation returns the animation layer and whether one is set.
func (e *EntityTransform) Animation() (Transform, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.animation == nil {
		return NewTransform(), false
	}
	return *e.animation, true
}

// Animated reports whether an animation layer is set.
func (e *EntityTransform) Animated() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.animation != nil
}

func (e *EntityTransform) SetLocal(t Transform) {
	e.mu.Lock()
	e.local = t
	e.mu.Unlock()
}

func (e *EntityTransform) SetWorld(t Transform) {
	e.mu.Lock()
	e.world = t
	e.mu.Unlock()
}

func (e *EntityTransform) SetAnimation(t Transform) {
	e.mu.Lock()
	e.animation = &t
	e.mu.Unlock()
}

func (e *EntityTransform) ClearAnimation() {
	e.mu.Lock()
	e.animation = nil
	e.mu.Unlock()
}

// Sync composes the layers into the entity's effective transform in its parent's space.
// A missing animation layer counts as identity.
//
// Returns:
//   - Transform: the decomposition of world·local·animation
func (e *EntityTransform) Sync() Transform {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m := e.world.Matrix().Mul4(e.local.Matrix())
	if e.animation != nil {
		m = m.Mul4(e.animation.Matrix())
	}
	return FromMatrix(m)
}
