// Package transform holds entity-level TRS transforms and the layered EntityTransform
// that combines an entity's world placement, local offset and animated pose.
package transform

import (
	"math"

	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a translation, rotation and non-uniform scale applied in T·R·S order.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// NewTransformAt returns a transform at position with identity rotation and unit scale.
func NewTransformAt(position mgl64.Vec3) Transform {
	t := NewTransform()
	t.Position = position
	return t
}

// Matrix composes the transform into a column-major affine matrix.
//
// Returns:
//   - mgl64.Mat4: T·R·S
func (t Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// FromMatrix decomposes an affine matrix without shear back into a Transform.
// Scale is taken from the basis column lengths; a mirrored basis is reported as a
// negative X scale. A degenerate basis yields identity rotation.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - Transform: the decomposed transform
func FromMatrix(m mgl64.Mat4) Transform {
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	scale := mgl64.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if c0.Dot(c1.Cross(c2)) < 0 {
		scale[0] = -scale[0]
	}

	out := Transform{
		Position: m.Col(3).Vec3(),
		Rotation: mgl64.QuatIdent(),
		Scale:    scale,
	}
	if scale[0] == 0 || scale[1] == 0 || scale[2] == 0 {
		return out
	}

	rot := mgl64.Mat4FromCols(
		c0.Mul(1/scale[0]).Vec4(0),
		c1.Mul(1/scale[1]).Vec4(0),
		c2.Mul(1/scale[2]).Vec4(0),
		mgl64.Vec4{0, 0, 0, 1},
	)
	out.Rotation = mgl64.Mat4ToQuat(rot).Normalize()
	return out
}

// FromNodeTransform widens a model node transform to entity precision.
func FromNodeTransform(n model.NodeTransform) Transform {
	return Transform{
		Position: mgl64.Vec3{float64(n.Translation[0]), float64(n.Translation[1]), float64(n.Translation[2])},
		Rotation: mgl64.Quat{
			W: float64(n.Rotation.W),
			V: mgl64.Vec3{float64(n.Rotation.V[0]), float64(n.Rotation.V[1]), float64(n.Rotation.V[2])},
		},
		Scale: mgl64.Vec3{float64(n.Scale[0]), float64(n.Scale[1]), float64(n.Scale[2])},
	}
}

// ApproxEqual reports whether both transforms agree within eps per component.
// Rotations are compared as orientations, so q and -q are equal.
func (t Transform) ApproxEqual(other Transform, eps float64) bool {
	return vecNear(t.Position, other.Position, eps) &&
		vecNear(t.Scale, other.Scale, eps) &&
		t.Rotation.OrientationEqualThreshold(other.Rotation, eps)
}

func vecNear(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
