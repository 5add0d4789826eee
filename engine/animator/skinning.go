package animator

import (
	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Pose holds the animated local transforms of a player, keyed by node index.
// Nodes without an entry use their default transform.
type Pose map[int]model.NodeTransform

// Local returns the pose entry for node, or the node's default transform when there is none.
func (p Pose) Local(nodes []model.Node, node int) model.NodeTransform {
	if t, ok := p[node]; ok {
		return t
	}
	return nodes[node].Transform
}

// Resolver computes global node matrices for one pose, caching every node it visits so
// that shared ancestors are composed only once. A Resolver is built for a single resolve
// pass and must not outlive the pose it reads.
type Resolver struct {
	nodes    []model.Node
	pose     Pose
	memo     []mgl32.Mat4
	known    []bool
	computed int
}

// NewResolver creates a Resolver with an empty cache sized for nodes.
//
// Parameters:
//   - nodes: the model's node table
//   - pose: the pose entries overriding default transforms, may be nil
//
// Returns:
//   - *Resolver: the resolver
func NewResolver(nodes []model.Node, pose Pose) *Resolver {
	return &Resolver{
		nodes: nodes,
		pose:  pose,
		memo:  make([]mgl32.Mat4, len(nodes)),
		known: make([]bool, len(nodes)),
	}
}

// Global returns the model-space matrix of node: the parent's global matrix times the
// node's local matrix. The hierarchy is assumed acyclic.
//
// Parameters:
//   - node: the node index
//
// Returns:
//   - mgl32.Mat4: the global matrix
func (r *Resolver) Global(node int) mgl32.Mat4 {
	if r.known[node] {
		return r.memo[node]
	}

	local := r.pose.Local(r.nodes, node).Matrix()
	global := local
	if parent := r.nodes[node].Parent; parent != model.NoParent {
		global = r.Global(parent).Mul4(local)
	}

	r.memo[node] = global
	r.known[node] = true
	r.computed++
	return global
}

// Computed returns how many distinct nodes have been composed so far.
func (r *Resolver) Computed() int {
	return r.computed
}

// ResolveSkinningMatrices computes global(joint) * inverseBind(joint) for every joint of
// skin, in joint order. The global cache lives only for this call.
//
// Parameters:
//   - nodes: the model's node table
//   - skin: the skin to resolve
//   - pose: the current pose, may be nil for the bind pose
//   - out: a destination reused when its length matches the joint count
//
// Returns:
//   - []mgl32.Mat4: the skinning matrices
func ResolveSkinningMatrices(nodes []model.Node, skin *model.Skin, pose Pose, out []mgl32.Mat4) []mgl32.Mat4 {
	if len(out) != len(skin.Joints) {
		out = make([]mgl32.Mat4, len(skin.Joints))
	}
	r := NewResolver(nodes, pose)
	for i, joint := range skin.Joints {
		out[i] = r.Global(joint).Mul4(skin.InverseBindMatrices[i])
	}
	return out
}
