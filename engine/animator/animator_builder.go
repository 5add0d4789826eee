package animator

import (
	"github.com/Carmen-Shannon/oxy-pose/engine/config"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithMaxInstances is an option builder that sets the initial instance capacity of the Animator.
// Values below one are ignored.
//
// Parameters:
//   - maxInstances: the initial capacity
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the max instances option to an animator
func WithMaxInstances(maxInstances int) AnimatorBuilderOption {
	return func(a *animator) {
		if maxInstances > 0 {
			a.maxInstances = uint32(maxInstances)
		}
	}
}

// WithAnimationConfig is an option builder that sets the playback defaults given to every
// new instance's player. Its MaxInstances is used as the capacity unless WithMaxInstances
// is also given.
//
// Parameters:
//   - cfg: the animation section of the engine configuration
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the config to an animator
func WithAnimationConfig(cfg config.AnimationConfig) AnimatorBuilderOption {
	return func(a *animator) {
		a.defaults = cfg
	}
}
