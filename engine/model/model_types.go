package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// NoParent marks a root node in Node.Parent and an absent skeleton root in Skin.SkeletonRoot.
const NoParent = -1

// --- Transform & Node Types ---

// NodeTransform is a decomposed local transform for animation sampling.
type NodeTransform struct {
	// Translation is the position offset relative to the parent node.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityNodeTransform returns the transform with no translation, identity rotation and unit scale.
func IdentityNodeTransform() NodeTransform {
	return NodeTransform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the transform into T * R * S.
//
// Returns:
//   - mgl32.Mat4: the column-major local matrix
func (t NodeTransform) Matrix() mgl32.Mat4 {
	s := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	r := t.Rotation.Mat4()
	tr := mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2])
	return tr.Mul4(r).Mul4(s)
}

// Node is one entry of a model's node table. Joints of a skin are nodes.
type Node struct {
	// Name is the node identifier (for debugging and animation targeting).
	Name string

	// Parent is the index of the parent node, or NoParent for roots.
	Parent int

	// Children are the indices of the nodes parented to this one.
	Children []int

	// Transform is the default (bind) local transform used when no pose entry overrides it.
	Transform NodeTransform
}

// HasParent reports whether the node has a parent.
func (n *Node) HasParent() bool {
	return n.Parent != NoParent
}

// Skin binds a mesh to a set of joint nodes.
type Skin struct {
	// Name is the skin identifier.
	Name string

	// Joints are node indices. Skinning matrices are produced in this order.
	Joints []int

	// InverseBindMatrices transform from model space to joint space at bind time.
	// There is exactly one per joint.
	InverseBindMatrices []mgl32.Mat4

	// SkeletonRoot is the node at the top of the joint hierarchy, or NoParent if absent.
	SkeletonRoot int
}

// --- Animation Types ---

// Interpolation selects how a channel's keyframes are blended.
type Interpolation int

const (
	// InterpolationLinear lerps vectors and slerps rotations.
	InterpolationLinear Interpolation = iota

	// InterpolationStep holds the previous keyframe until the next one is reached.
	InterpolationStep

	// InterpolationCubicSpline evaluates a Hermite spline through (in-tangent, value, out-tangent) triples.
	InterpolationCubicSpline
)

// String returns the glTF name of the interpolation mode.
func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "LINEAR"
	case InterpolationStep:
		return "STEP"
	case InterpolationCubicSpline:
		return "CUBICSPLINE"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// ParseInterpolation maps a glTF interpolation name to its mode. Matching is case-insensitive
// and an empty name yields InterpolationLinear, the glTF default.
//
// Parameters:
//   - name: the interpolation name
//
// Returns:
//   - Interpolation: the parsed mode
//   - error: an error if the name is not recognized
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToUpper(name) {
	case "", "LINEAR":
		return InterpolationLinear, nil
	case "STEP":
		return InterpolationStep, nil
	case "CUBICSPLINE":
		return InterpolationCubicSpline, nil
	default:
		return InterpolationLinear, fmt.Errorf("unknown interpolation %q", name)
	}
}

// ChannelValues is the keyframe output of a channel. The concrete type decides which
// transform component the channel drives: Translations, Rotations or Scales.
type ChannelValues interface {
	// Len returns the number of stored values, including spline tangents.
	Len() int

	channelValues()
}

// Translations are translation keyframe values.
type Translations []mgl32.Vec3

// Rotations are rotation keyframe values.
type Rotations []mgl32.Quat

// Scales are scale keyframe values.
type Scales []mgl32.Vec3

func (v Translations) Len() int { return len(v) }
func (v Rotations) Len() int    { return len(v) }
func (v Scales) Len() int       { return len(v) }

func (Translations) channelValues() {}
func (Rotations) channelValues()    {}
func (Scales) channelValues()       {}

// Channel animates one component of one node.
type Channel struct {
	// TargetNode is the index of the animated node.
	TargetNode int

	// Times are the keyframe timestamps in seconds, ascending.
	Times []float32

	// Values holds len(Times) values, or 3*len(Times) for cubic splines.
	Values ChannelValues

	// Interpolation selects the sampling mode.
	Interpolation Interpolation
}

// ExpectedValueCount returns the value count the interpolation layout requires for this channel.
func (c *Channel) ExpectedValueCount() int {
	if c.Interpolation == InterpolationCubicSpline {
		return 3 * len(c.Times)
	}
	return len(c.Times)
}

// AnimationClip represents a single animation (walk, run, attack, etc.).
// Clips are immutable after load and may be shared by any number of players.
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the total length of the animation in seconds.
	Duration float32

	// Channels contains the keyframe data of every animated node component.
	Channels []Channel
}

// Animates reports whether any channel of the clip targets the given node.
func (c *AnimationClip) Animates(node int) bool {
	for i := range c.Channels {
		if c.Channels[i].TargetNode == node {
			return true
		}
	}
	return false
}

// ComputeDuration returns the largest final keyframe time across all channels.
// WithAnimations uses it for clips built without a duration.
func (c *AnimationClip) ComputeDuration() float32 {
	var d float32
	for i := range c.Channels {
		times := c.Channels[i].Times
		if len(times) > 0 && times[len(times)-1] > d {
			d = times[len(times)-1]
		}
	}
	return d
}
