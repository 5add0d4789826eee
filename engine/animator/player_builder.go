package animator

import (
	"github.com/Carmen-Shannon/oxy-pose/engine/config"
)

// PlayerBuilderOption is a functional option for configuring a Player during construction.
type PlayerBuilderOption func(*Player)

// WithPlaybackDefaults is an option builder that sets the speed, loop and autoplay
// values a Player starts with and that every newly selected clip inherits.
//
// Parameters:
//   - cfg: the animation section of the engine configuration
//
// Returns:
//   - PlayerBuilderOption: a function that applies the defaults to a player
func WithPlaybackDefaults(cfg config.AnimationConfig) PlayerBuilderOption {
	return func(p *Player) {
		p.defaults = cfg
	}
}
