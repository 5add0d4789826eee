package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithNodes is an option builder that sets the node table of the Model.
//
// Parameters:
//   - nodes: the nodes, indexed by position
//
// Returns:
//   - ModelBuilderOption: a function that applies the nodes option to a model
func WithNodes(nodes []Node) ModelBuilderOption {
	return func(m *model) {
		m.nodes = nodes
	}
}

// WithSkins is an option builder that sets the skins of the Model. The first skin is
// the one used for skinning matrices.
//
// Parameters:
//   - skins: the skins to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the skins option to a model
func WithSkins(skins ...Skin) ModelBuilderOption {
	return func(m *model) {
		m.skins = append(m.skins, skins...)
	}
}

// WithAnimations is an option builder that sets the animation clips of the Model.
// A clip without a positive Duration gets the time of its last keyframe.
//
// Parameters:
//   - animations: the animation clips to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(animations ...*AnimationClip) ModelBuilderOption {
	return func(m *model) {
		for _, clip := range animations {
			if clip.Duration <= 0 {
				clip.Duration = clip.ComputeDuration()
			}
		}
		m.animations = append(m.animations, animations...)
	}
}
