package game_object

import (
	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/Carmen-Shannon/oxy-pose/engine/transform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject. Objects added to a Scene without an ID get a new one.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uuid.UUID) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithLabel sets the label of the GameObject.
//
// Parameters:
//   - label: the label, unique within a scene when hierarchy snapshots are used
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the label
func WithLabel(label string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.label = label
	}
}

// WithEnabled sets whether the GameObject is updated by its scene.
//
// Parameters:
//   - enabled: false to skip the object during scene updates
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the Model for this GameObject.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithPosition sets the initial world position of the GameObject.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//   - z: the z position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(x, y, z float64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.initialWorld.Position = mgl64.Vec3{x, y, z}
	}
}

// WithScale sets the initial world scale of the GameObject.
//
// Parameters:
//   - sx: the x scale factor
//   - sy: the y scale factor
//   - sz: the z scale factor
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial scale
func WithScale(sx, sy, sz float64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.initialWorld.Scale = mgl64.Vec3{sx, sy, sz}
	}
}

// WithRotation sets the initial world rotation of the GameObject.
//
// Parameters:
//   - q: the rotation
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial rotation
func WithRotation(q mgl64.Quat) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.initialWorld.Rotation = q
	}
}

// WithLocalTransform sets the initial local layer of the GameObject.
//
// Parameters:
//   - t: the local offset applied after the world layer
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the local layer
func WithLocalTransform(t transform.Transform) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.initialLocal = t
	}
}
