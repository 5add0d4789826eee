package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainNodes builds root(0) -> 1 -> 2 with a unit translation along X per level.
func chainNodes() []Node {
	nodes := []Node{
		{Name: "root", Children: []int{1}, Transform: IdentityNodeTransform()},
		{Name: "mid", Children: []int{2}, Transform: IdentityNodeTransform()},
		{Name: "tip", Transform: IdentityNodeTransform()},
	}
	nodes[1].Transform.Translation = mgl32.Vec3{1, 0, 0}
	nodes[2].Transform.Translation = mgl32.Vec3{1, 0, 0}
	return nodes
}

func linkedChain(t *testing.T) []Node {
	nodes := chainNodes()
	require.NoError(t, LinkParents(nodes))
	return nodes
}

func TestNodeTransformMatrix(t *testing.T) {
	tr := NodeTransform{
		Translation: mgl32.Vec3{1, 2, 3},
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
		Scale:       mgl32.Vec3{2, 2, 2},
	}
	// scale first, then rotate, then translate: (1,0,0) -> (2,0,0) -> (0,2,0) -> (1,4,3)
	got := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assert.True(t, got.ApproxEqualThreshold(mgl32.Vec3{1, 4, 3}, 1e-5), "got %v", got)

	assert.Equal(t, mgl32.Ident4(), IdentityNodeTransform().Matrix())
}

func TestParseInterpolation(t *testing.T) {
	for name, want := range map[string]Interpolation{
		"":            InterpolationLinear,
		"LINEAR":      InterpolationLinear,
		"step":        InterpolationStep,
		"CubicSpline": InterpolationCubicSpline,
	} {
		got, err := ParseInterpolation(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseInterpolation("bezier")
	assert.Error(t, err)
	assert.Equal(t, "CUBICSPLINE", InterpolationCubicSpline.String())
}

func TestModelAccessors(t *testing.T) {
	walk := &AnimationClip{Name: "walk", Duration: 1}
	run := &AnimationClip{Name: "run", Duration: 2}
	m := NewModel(
		WithName("rig"),
		WithNodes(linkedChain(t)),
		WithSkins(Skin{Name: "body", Joints: []int{0, 1, 2}, InverseBindMatrices: make([]mgl32.Mat4, 3), SkeletonRoot: 0}),
		WithAnimations(walk, run),
	)

	assert.Equal(t, "rig", m.Name())
	assert.True(t, m.Skinned())
	assert.Equal(t, "body", m.Skin().Name)
	assert.Equal(t, []int{0}, m.RootNodes())
	assert.Equal(t, 1, m.Node(2).Parent)
	assert.Equal(t, 2, m.AnimationCount())
	assert.Equal(t, []string{"walk", "run"}, m.AnimationNames())
	assert.Equal(t, 1, m.GetAnimationIndex("run"))
	assert.Equal(t, -1, m.GetAnimationIndex("jump"))
	assert.Same(t, run, m.Animation(1))
	assert.Nil(t, m.Animation(2))

	static := NewModel(WithName("crate"))
	assert.False(t, static.Skinned())
	assert.Nil(t, static.Skin())
}

func TestLinkParents(t *testing.T) {
	nodes := linkedChain(t)
	assert.Equal(t, NoParent, nodes[0].Parent)
	assert.Equal(t, 0, nodes[1].Parent)
	assert.Equal(t, 1, nodes[2].Parent)

	bad := chainNodes()
	bad[0].Children = []int{1, 2}
	assert.ErrorIs(t, LinkParents(bad), common.ErrInconsistentHierarchy)

	bad = chainNodes()
	bad[2].Children = []int{7}
	assert.ErrorIs(t, LinkParents(bad), common.ErrNodeOutOfRange)
}

func TestTopologicalOrder(t *testing.T) {
	nodes := []Node{
		{Name: "c", Parent: 2},
		{Name: "root", Parent: NoParent, Children: []int{2}},
		{Name: "b", Parent: 1, Children: []int{0}},
	}
	order, err := TopologicalOrder(nodes)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, order)

	cyclic := []Node{
		{Name: "a", Parent: 1, Children: []int{1}},
		{Name: "b", Parent: 0, Children: []int{0}},
	}
	_, err = TopologicalOrder(cyclic)
	assert.ErrorIs(t, err, common.ErrCyclicHierarchy)
}

func TestValidate(t *testing.T) {
	valid := func() (*AnimationClip, []Node, Skin) {
		clip := &AnimationClip{
			Name:     "wave",
			Duration: 1,
			Channels: []Channel{
				{TargetNode: 1, Times: []float32{0, 1}, Values: Rotations{mgl32.QuatIdent(), mgl32.QuatIdent()}},
				{TargetNode: 2, Times: []float32{0, 1}, Values: Translations(make([]mgl32.Vec3, 6)), Interpolation: InterpolationCubicSpline},
			},
		}
		skin := Skin{Joints: []int{0, 1, 2}, InverseBindMatrices: []mgl32.Mat4{mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4()}, SkeletonRoot: 0}
		return clip, linkedChain(t), skin
	}

	clip, nodes, skin := valid()
	assert.NoError(t, Validate(NewModel(WithNodes(nodes), WithSkins(skin), WithAnimations(clip))))

	t.Run("joint mismatch", func(t *testing.T) {
		clip, nodes, skin := valid()
		skin.InverseBindMatrices = skin.InverseBindMatrices[:2]
		assert.ErrorIs(t, Validate(NewModel(WithNodes(nodes), WithSkins(skin), WithAnimations(clip))), common.ErrJointMismatch)
	})

	t.Run("joint out of range", func(t *testing.T) {
		clip, nodes, skin := valid()
		skin.Joints[2] = 9
		assert.ErrorIs(t, Validate(NewModel(WithNodes(nodes), WithSkins(skin), WithAnimations(clip))), common.ErrNodeOutOfRange)
	})

	t.Run("spline layout", func(t *testing.T) {
		clip, nodes, skin := valid()
		clip.Channels[1].Values = Translations(make([]mgl32.Vec3, 2))
		assert.ErrorIs(t, Validate(NewModel(WithNodes(nodes), WithSkins(skin), WithAnimations(clip))), common.ErrChannelLayout)
	})

	t.Run("unsorted times", func(t *testing.T) {
		clip, nodes, skin := valid()
		clip.Channels[0].Times = []float32{1, 0}
		assert.ErrorIs(t, Validate(NewModel(WithNodes(nodes), WithSkins(skin), WithAnimations(clip))), common.ErrChannelTimes)
	})

	t.Run("dangling parent", func(t *testing.T) {
		clip, nodes, skin := valid()
		nodes[1].Children = nil
		assert.ErrorIs(t, Validate(NewModel(WithNodes(nodes), WithSkins(skin), WithAnimations(clip))), common.ErrInconsistentHierarchy)
	})

	t.Run("cycle", func(t *testing.T) {
		clip, nodes, skin := valid()
		nodes[0].Parent = 2
		nodes[2].Children = []int{0}
		assert.ErrorIs(t, Validate(NewModel(WithNodes(nodes), WithSkins(skin), WithAnimations(clip))), common.ErrCyclicHierarchy)
	})
}

func TestAnimationClipHelpers(t *testing.T) {
	clip := AnimationClip{Channels: []Channel{
		{TargetNode: 3, Times: []float32{0, 0.5}},
		{TargetNode: 4, Times: []float32{0.25, 1.75}},
		{TargetNode: 5},
	}}
	assert.True(t, clip.Animates(4))
	assert.False(t, clip.Animates(0))
	assert.InDelta(t, 1.75, clip.ComputeDuration(), 1e-6)
}

func TestWithAnimationsFillsMissingDuration(t *testing.T) {
	open := &AnimationClip{Name: "open", Channels: []Channel{
		{TargetNode: 0, Times: []float32{0, 0.5}, Values: Translations{{}, {}}},
		{TargetNode: 0, Times: []float32{0, 1.5}, Values: Scales{{1, 1, 1}, {2, 2, 2}}},
	}}
	held := &AnimationClip{Name: "held", Duration: 3, Channels: []Channel{
		{TargetNode: 0, Times: []float32{0, 1}, Values: Translations{{}, {}}},
	}}
	m := NewModel(WithAnimations(open, held))

	assert.InDelta(t, 1.5, m.Animation(0).Duration, 1e-6)
	assert.InDelta(t, 3, m.Animation(1).Duration, 1e-6)
}
