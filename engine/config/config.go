// Package config loads engine settings from TOML.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/pelletier/go-toml/v2"
)

// Config is the root of the TOML document.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Animation AnimationConfig `toml:"animation"`
	Scene     SceneConfig     `toml:"scene"`
	Engine    EngineConfig    `toml:"engine"`
}

// LogConfig configures the shared logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
}

// AnimationConfig holds the playback defaults a new player starts with.
type AnimationConfig struct {
	DefaultSpeed   float32 `toml:"default_speed"`
	DefaultLooping bool    `toml:"default_looping"`
	Autoplay       bool    `toml:"autoplay"`
	// MaxInstances is the starting instance capacity of an animator. It grows on demand.
	MaxInstances int `toml:"max_instances"`
}

// SceneConfig sizes the per-frame animation worker pool.
type SceneConfig struct {
	ComputeWorkers int `toml:"compute_workers"`
	QueueSize      int `toml:"queue_size"`
	IdleTimeoutMS  int `toml:"idle_timeout_ms"`
}

// EngineConfig configures the engine loop.
type EngineConfig struct {
	// TickRate is the number of updates per second Run aims for.
	TickRate  int  `toml:"tick_rate"`
	Profiling bool `toml:"profiling"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Animation: AnimationConfig{
			DefaultSpeed:   1,
			DefaultLooping: true,
			Autoplay:       true,
			MaxInstances:   16,
		},
		Scene: SceneConfig{
			ComputeWorkers: max(runtime.NumCPU()-1, 1),
			QueueSize:      256,
			IdleTimeoutMS:  1000,
		},
		Engine: EngineConfig{TickRate: 60},
	}
}

// Parse decodes a TOML document on top of Default. Keys that are absent keep their
// default; numeric keys set to zero or below are reset to their default.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the resulting configuration
//   - error: an error if the document is malformed or the log level is unknown
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	def := Default()
	cfg.Log.Level = common.Coalesce(cfg.Log.Level, def.Log.Level)
	cfg.Animation.MaxInstances = common.Positive(cfg.Animation.MaxInstances, def.Animation.MaxInstances)
	cfg.Scene.ComputeWorkers = common.Positive(cfg.Scene.ComputeWorkers, def.Scene.ComputeWorkers)
	cfg.Scene.QueueSize = common.Positive(cfg.Scene.QueueSize, def.Scene.QueueSize)
	cfg.Scene.IdleTimeoutMS = common.Positive(cfg.Scene.IdleTimeoutMS, def.Scene.IdleTimeoutMS)
	cfg.Engine.TickRate = common.Positive(cfg.Engine.TickRate, def.Engine.TickRate)

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}
	return cfg, nil
}

// Load reads and parses the TOML file at path.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the resulting configuration
//   - error: an error if the file cannot be read or parsed
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Apply pushes the settings that act on process-wide state, currently the log level.
//
// Returns:
//   - error: an error if the log level cannot be applied
func (c Config) Apply() error {
	return common.SetLogLevel(c.Log.Level)
}

// IdleTimeout returns the worker idle timeout as a duration.
func (s SceneConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMS) * time.Millisecond
}

// TickInterval returns the time between two engine updates.
func (e EngineConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(e.TickRate)
}
