package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestResolverMemoizesSharedAncestors(t *testing.T) {
	m := armModel()
	r := NewResolver(m.Nodes(), nil)

	elbow := r.Global(2)
	assert.Equal(t, 3, r.Computed(), "elbow, shoulder and root")

	hip := r.Global(3)
	assert.Equal(t, 4, r.Computed(), "root is reused for the hip")

	root := r.Global(0)
	assert.Equal(t, 4, r.Computed())
	assert.Equal(t, root, r.Global(0))

	assertVec3(t, mgl32.Vec3{2, 1, 0}, translationOf(elbow))
	assertVec3(t, mgl32.Vec3{0, 0, 0}, translationOf(hip))

	// both chains see the same root matrix
	shoulder := r.Global(1)
	assertMat4(t, root.Mul4(m.Node(1).Transform.Matrix()), shoulder)
	assertMat4(t, root.Mul4(m.Node(3).Transform.Matrix()), hip)
}

func TestResolverUsesPoseOverDefault(t *testing.T) {
	m := armModel()
	pose := Pose{1: model.NodeTransform{
		Translation: mgl32.Vec3{0, 0, 5},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}}
	r := NewResolver(m.Nodes(), pose)
	assertVec3(t, mgl32.Vec3{1, 1, 5}, translationOf(r.Global(2)))
}

func TestResolveSkinningMatricesBindPoseIsIdentity(t *testing.T) {
	m := armModel()
	mats := ResolveSkinningMatrices(m.Nodes(), m.Skin(), nil, nil)
	assert.Len(t, mats, 3)
	for _, mat := range mats {
		assertMat4(t, mgl32.Ident4(), mat)
	}
}

func TestResolveSkinningMatricesReusesOutput(t *testing.T) {
	m := armModel()
	out := make([]mgl32.Mat4, 3)
	mats := ResolveSkinningMatrices(m.Nodes(), m.Skin(), nil, out)
	assert.Same(t, &out[0], &mats[0])

	short := make([]mgl32.Mat4, 1)
	mats = ResolveSkinningMatrices(m.Nodes(), m.Skin(), nil, short)
	assert.Len(t, mats, 3)
}

func TestResolveSkinningMatricesFollowsJointOrder(t *testing.T) {
	m := armModel()
	pose := Pose{2: model.NodeTransform{
		Translation: mgl32.Vec3{1, 3, 0},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}}
	mats := ResolveSkinningMatrices(m.Nodes(), m.Skin(), pose, nil)

	// joint 0 is the elbow: moved 3 up from its bind position
	assertVec3(t, mgl32.Vec3{0, 3, 0}, translationOf(mats[0]))
	assertMat4(t, mgl32.Ident4(), mats[1])
	assertMat4(t, mgl32.Ident4(), mats[2])
}
