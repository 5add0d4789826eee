package scene

import (
	"github.com/Carmen-Shannon/oxy-pose/engine/config"
	"github.com/Carmen-Shannon/oxy-pose/engine/game_object"
	"github.com/Carmen-Shannon/oxy-pose/engine/profiler"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for updates.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs; their animators are auto-registered.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.add(obj)
		}
	}
}

// WithComputeWorkers sets the number of worker goroutines used during the parallel
// animator phase of Update. Defaults to runtime.NumCPU()-1.
// Higher values may improve throughput with many distinct models; lower values
// reduce scheduling overhead for simple scenes.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}

// WithSceneConfig applies the scene section of the engine configuration: worker count,
// task queue size and worker idle timeout.
//
// Parameters:
//   - cfg: the scene configuration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSceneConfig(cfg config.SceneConfig) SceneBuilderOption {
	return func(s *scene) {
		s.computeWorkers = max(cfg.ComputeWorkers, 1)
		if cfg.QueueSize > 0 {
			s.queueSize = cfg.QueueSize
		}
		if d := cfg.IdleTimeout(); d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithAnimationConfig sets the playback defaults and initial capacity of every
// animator the scene creates. Must precede WithObjects to affect its objects.
//
// Parameters:
//   - cfg: the animation configuration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAnimationConfig(cfg config.AnimationConfig) SceneBuilderOption {
	return func(s *scene) {
		s.animationConfig = cfg
	}
}

// WithProfiler ticks p at the end of every Update.
//
// Parameters:
//   - p: the profiler, or nil to disable
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) SceneBuilderOption {
	return func(s *scene) {
		s.profiler = p
	}
}
