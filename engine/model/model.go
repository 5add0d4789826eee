package model

// model is the implementation of the Model interface.
type model struct {
	name       string
	nodes      []Node
	skins      []Skin
	animations []*AnimationClip
}

// Model defines the interface for a loaded skeletal asset.
// A Model is an immutable container holding the node table, skins and animation clips.
// It is shared read-only by every player bound to it, so none of its accessors copy.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Skinned reports whether this model has at least one skin.
	//
	// Returns:
	//   - bool: true if the model has joint data
	Skinned() bool

	// Nodes retrieves the node table. Node indices are positions in this slice.
	//
	// Returns:
	//   - []Node: the nodes
	Nodes() []Node

	// Node retrieves a single node by index. Panics if the index is out of range.
	//
	// Parameters:
	//   - index: the node index
	//
	// Returns:
	//   - *Node: the node
	Node(index int) *Node

	// RootNodes returns the indices of all nodes without a parent.
	//
	// Returns:
	//   - []int: the root node indices in ascending order
	RootNodes() []int

	// Skins retrieves every skin of the model.
	//
	// Returns:
	//   - []Skin: the skins
	Skins() []Skin

	// Skin retrieves the skin used for skinning matrices, which is the first one.
	// Returns nil for static models.
	//
	// Returns:
	//   - *Skin: the active skin or nil
	Skin() *Skin

	// Animations retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// Animation retrieves a clip by index, or nil if the index is out of range.
	//
	// Parameters:
	//   - index: the clip index
	//
	// Returns:
	//   - *AnimationClip: the clip or nil
	Animation(index int) *AnimationClip

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips.
	//
	// Returns:
	//   - []string: the animation clip names
	AnimationNames() []string

	// GetAnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation clip name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	GetAnimationIndex(name string) int
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
// The model is not validated here; loaders call Validate once the data is complete.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Skinned() bool {
	return len(m.skins) > 0
}

func (m *model) Nodes() []Node {
	return m.nodes
}

func (m *model) Node(index int) *Node {
	return &m.nodes[index]
}

func (m *model) RootNodes() []int {
	roots := make([]int, 0, 1)
	for i := range m.nodes {
		if !m.nodes[i].HasParent() {
			roots = append(roots, i)
		}
	}
	return roots
}

func (m *model) Skins() []Skin {
	return m.skins
}

func (m *model) Skin() *Skin {
	if len(m.skins) == 0 {
		return nil
	}
	return &m.skins[0]
}

func (m *model) Animations() []*AnimationClip {
	return m.animations
}

func (m *model) Animation(index int) *AnimationClip {
	if index < 0 || index >= len(m.animations) {
		return nil
	}
	return m.animations[index]
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, anim := range m.animations {
		names[i] = anim.Name
	}
	return names
}

func (m *model) GetAnimationIndex(name string) int {
	for i, anim := range m.animations {
		if anim.Name == name {
			return i
		}
	}
	return -1
}
