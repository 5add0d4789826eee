package model

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-pose/common"
)

// LinkParents derives every node's Parent from the Children lists, the way glTF stores
// hierarchy. Nodes that no other node lists as a child become roots.
//
// Parameters:
//   - nodes: the node table, modified in place
//
// Returns:
//   - error: ErrNodeOutOfRange for a bad child index, or ErrInconsistentHierarchy when a node is listed by two parents
func LinkParents(nodes []Node) error {
	for i := range nodes {
		nodes[i].Parent = NoParent
	}
	for p := range nodes {
		for _, c := range nodes[p].Children {
			if c < 0 || c >= len(nodes) {
				return fmt.Errorf("node %d child %d: %w", p, c, common.ErrNodeOutOfRange)
			}
			if nodes[c].Parent != NoParent {
				return fmt.Errorf("node %d claimed by %d and %d: %w", c, nodes[c].Parent, p, common.ErrInconsistentHierarchy)
			}
			nodes[c].Parent = p
		}
	}
	return nil
}

// TopologicalOrder returns the node indices ordered so that every parent precedes its
// children, walking breadth-first from the roots.
//
// Parameters:
//   - nodes: the node table; Parent and Children must already agree
//
// Returns:
//   - []int: the node indices in parent-first order
//   - error: ErrCyclicHierarchy if some nodes cannot be reached from any root
func TopologicalOrder(nodes []Node) ([]int, error) {
	sorted := make([]int, 0, len(nodes))
	queue := make([]int, 0, len(nodes))
	for i := range nodes {
		if !nodes[i].HasParent() {
			queue = append(queue, i)
		}
	}

	visited := make([]bool, len(nodes))
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if visited[idx] {
			return nil, fmt.Errorf("node %d reached twice: %w", idx, common.ErrCyclicHierarchy)
		}
		visited[idx] = true
		sorted = append(sorted, idx)
		queue = append(queue, nodes[idx].Children...)
	}

	if len(sorted) < len(nodes) {
		for i := range nodes {
			if !visited[i] {
				return nil, fmt.Errorf("node %d unreachable from any root: %w", i, common.ErrCyclicHierarchy)
			}
		}
	}
	return sorted, nil
}

// Validate checks a model once at load time so that evaluation can trust its indices.
// It rejects out-of-range references, parent/children disagreement, cycles, skins whose
// joints and inverse bind matrices differ in count, unsorted keyframe times and channels
// whose value count breaks the interpolation layout.
//
// Parameters:
//   - m: the model to check
//
// Returns:
//   - error: nil if the model is well formed, otherwise an error wrapping one of the common sentinels
func Validate(m Model) error {
	nodes := m.Nodes()
	if err := validateNodes(nodes); err != nil {
		return fmt.Errorf("model %q: %w", m.Name(), err)
	}
	for i, skin := range m.Skins() {
		if err := validateSkin(&skin, len(nodes)); err != nil {
			return fmt.Errorf("model %q skin %d: %w", m.Name(), i, err)
		}
	}
	for i, clip := range m.Animations() {
		for c := range clip.Channels {
			if err := validateChannel(&clip.Channels[c], len(nodes)); err != nil {
				return fmt.Errorf("model %q animation %d (%s) channel %d: %w", m.Name(), i, clip.Name, c, err)
			}
		}
	}
	return nil
}

func validateNodes(nodes []Node) error {
	for i := range nodes {
		n := &nodes[i]
		if n.HasParent() {
			if n.Parent < 0 || n.Parent >= len(nodes) {
				return fmt.Errorf("node %d parent %d: %w", i, n.Parent, common.ErrNodeOutOfRange)
			}
			if !slices.Contains(nodes[n.Parent].Children, i) {
				return fmt.Errorf("node %d missing from children of %d: %w", i, n.Parent, common.ErrInconsistentHierarchy)
			}
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(nodes) {
				return fmt.Errorf("node %d child %d: %w", i, c, common.ErrNodeOutOfRange)
			}
			if nodes[c].Parent != i {
				return fmt.Errorf("node %d lists %d whose parent is %d: %w", i, c, nodes[c].Parent, common.ErrInconsistentHierarchy)
			}
		}
	}
	_, err := TopologicalOrder(nodes)
	return err
}

func validateSkin(skin *Skin, nodeCount int) error {
	if len(skin.Joints) != len(skin.InverseBindMatrices) {
		return fmt.Errorf("%d joints, %d inverse bind matrices: %w", len(skin.Joints), len(skin.InverseBindMatrices), common.ErrJointMismatch)
	}
	for _, j := range skin.Joints {
		if j < 0 || j >= nodeCount {
			return fmt.Errorf("joint %d: %w", j, common.ErrNodeOutOfRange)
		}
	}
	if skin.SkeletonRoot != NoParent && (skin.SkeletonRoot < 0 || skin.SkeletonRoot >= nodeCount) {
		return fmt.Errorf("skeleton root %d: %w", skin.SkeletonRoot, common.ErrNodeOutOfRange)
	}
	return nil
}

func validateChannel(ch *Channel, nodeCount int) error {
	if ch.TargetNode < 0 || ch.TargetNode >= nodeCount {
		return fmt.Errorf("target %d: %w", ch.TargetNode, common.ErrNodeOutOfRange)
	}
	for k := 1; k < len(ch.Times); k++ {
		if ch.Times[k] < ch.Times[k-1] {
			return fmt.Errorf("time %d (%g) precedes %g: %w", k, ch.Times[k], ch.Times[k-1], common.ErrChannelTimes)
		}
	}
	got := 0
	if ch.Values != nil {
		got = ch.Values.Len()
	}
	if want := ch.ExpectedValueCount(); got != want {
		return fmt.Errorf("%s with %d times has %d values, want %d: %w", ch.Interpolation, len(ch.Times), got, want, common.ErrChannelLayout)
	}
	return nil
}
