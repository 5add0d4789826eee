package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-pose/engine/animator"
	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/Carmen-Shannon/oxy-pose/engine/transform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type gameObject struct {
	id                 uuid.UUID
	label              string
	enabled            atomic.Bool
	mdl                model.Model
	animator           animator.Animator
	animatorInstanceID int
	transform          *transform.EntityTransform

	// initial transform state used before the object is added to a Scene
	initialLocal transform.Transform
	initialWorld transform.Transform
}

// GameObject defines the interface for a scene entity bound to an Animator instance.
// The entity's placement lives in its EntityTransform; its animated pose lives in the
// Player owned by the Animator at AnimatorInstanceID.
type GameObject interface {
	// ID returns the object's unique identifier, uuid.Nil until assigned.
	//
	// Returns:
	//   - uuid.UUID: the object ID
	ID() uuid.UUID

	// Label returns the object's human-readable label. Labels key hierarchy snapshots.
	//
	// Returns:
	//   - string: the label, empty if unset
	Label() string

	// Enabled returns whether this object is updated by its scene.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Animator returns the Animator associated with this object.
	//
	// Returns:
	//   - animator.Animator: the associated Animator, or nil
	Animator() animator.Animator

	// AnimatorInstanceID returns the instance index within the Animator.
	//
	// Returns:
	//   - int: the instance index, or -1 if unset
	AnimatorInstanceID() int

	// Player returns this object's animation player, or nil if the object has no
	// animator instance.
	//
	// Returns:
	//   - *animator.Player: the player or nil
	Player() *animator.Player

	// Transform returns the object's layered transform. It is never nil.
	//
	// Returns:
	//   - *transform.EntityTransform: the transform
	Transform() *transform.EntityTransform

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uuid.UUID)

	// SetLabel sets the object's label.
	//
	// Parameters:
	//   - label: the label to assign
	SetLabel(label string)

	// SetEnabled sets whether the object is updated by its scene.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object.
	//
	// Parameters:
	//   - m: the Model to associate
	SetModel(m model.Model)

	// SetAnimator sets the Animator associated with this object.
	//
	// Parameters:
	//   - anim: the Animator to associate
	SetAnimator(anim animator.Animator)

	// SetAnimatorInstanceID sets the instance index within the Animator.
	//
	// Parameters:
	//   - instanceID: the instance index
	SetAnimatorInstanceID(instanceID int)

	// SetPosition moves the object's world layer, preserving its rotation and scale.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float64)

	// SetRotation replaces the rotation of the object's world layer.
	//
	// Parameters:
	//   - q: the new rotation
	SetRotation(q mgl64.Quat)

	// SetScale replaces the scale of the object's world layer.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float64)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects are enabled unless WithEnabled(false) is given.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		animatorInstanceID: -1,
		initialLocal:       transform.NewTransform(),
		initialWorld:       transform.NewTransform(),
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	obj.transform = transform.NewEntityTransform(obj.initialLocal, obj.initialWorld)
	return obj
}

func (g *gameObject) ID() uuid.UUID {
	return g.id
}

func (g *gameObject) Label() string {
	return g.label
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Animator() animator.Animator {
	return g.animator
}

func (g *gameObject) AnimatorInstanceID() int {
	return g.animatorInstanceID
}

func (g *gameObject) Player() *animator.Player {
	if g.animator == nil || g.animatorInstanceID < 0 {
		return nil
	}
	return g.animator.Player(uint32(g.animatorInstanceID))
}

func (g *gameObject) Transform() *transform.EntityTransform {
	return g.transform
}

func (g *gameObject) SetID(id uuid.UUID) {
	g.id = id
}

func (g *gameObject) SetLabel(label string) {
	g.label = label
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mdl = m
}

func (g *gameObject) SetAnimator(anim animator.Animator) {
	g.animator = anim
}

func (g *gameObject) SetAnimatorInstanceID(instanceID int) {
	g.animatorInstanceID = instanceID
}

func (g *gameObject) SetPosition(x, y, z float64) {
	w := g.transform.World()
	w.Position = mgl64.Vec3{x, y, z}
	g.transform.SetWorld(w)
}

func (g *gameObject) SetRotation(q mgl64.Quat) {
	w := g.transform.World()
	w.Rotation = q
	g.transform.SetWorld(w)
}

func (g *gameObject) SetScale(sx, sy, sz float64) {
	w := g.transform.World()
	w.Scale = mgl64.Vec3{sx, sy, sz}
	g.transform.SetWorld(w)
}
