package engine

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/Carmen-Shannon/oxy-pose/engine/config"
	"github.com/Carmen-Shannon/oxy-pose/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pose/engine/scene"
)

// engine implements the Engine interface.
type engine struct {
	mu *sync.RWMutex

	cfg config.Config

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	scenes map[int]scene.Scene
}

// Engine drives registered scenes at a fixed tick rate without a window or GPU device.
// Each tick runs the tick callback and then updates every active scene in ascending key order.
type Engine interface {
	// Config returns the configuration the engine was built with.
	//
	// Returns:
	//   - config.Config: the configuration
	Config() config.Config

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// If the engine is running, the change takes effect on the next tick.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// TickRate returns the interval between ticks.
	//
	// Returns:
	//   - time.Duration: the tick interval
	TickRate() time.Duration

	// SetTickCallback registers the function called at the start of each tick.
	// Use this for game logic such as starting clips or moving objects.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddScene registers a scene at the given key.
	// Scenes are updated in ascending key order.
	//
	// Parameters:
	//   - key: the ordering key (lower updates first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	//
	// Parameters:
	//   - key: the key of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the key of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by order.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Step runs one tick synchronously: the tick callback, then every active scene's Update.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Step(deltaTime float32)

	// Run ticks the engine at the configured rate until ctx is cancelled or Quit is called.
	// A panic inside a tick stops the loop and is returned as an error.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: ctx.Err() on cancellation, nil after Quit
	Run(ctx context.Context) error

	// Quit signals Run to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// The configuration defaults to config.Default(); its log level is applied to the shared logger.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	cfg := config.Default()
	e := &engine{
		mu:              &sync.RWMutex{},
		cfg:             cfg,
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  cfg.Engine.TickInterval(),
	}

	for _, opt := range options {
		opt(e)
	}

	if err := e.cfg.Apply(); err != nil {
		common.LogWarn("engine: %v", err)
	}
	return e
}

func (e *engine) Config() config.Config {
	return e.cfg
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	}
}

func (e *engine) TickRate() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engineTickRate
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.scenes)
}

func (e *engine) Step(deltaTime float32) {
	e.mu.RLock()
	callback := e.tickCallback
	profiling := e.profilingEnabled
	active := make([]scene.Scene, 0, len(e.scenes))
	for _, k := range slices.Sorted(maps.Keys(e.scenes)) {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	e.mu.RUnlock()

	if callback != nil {
		callback(deltaTime)
	}
	for _, s := range active {
		s.Update(deltaTime)
	}
	if profiling && e.profiler != nil {
		e.profiler.Tick()
	}
}

func (e *engine) Run(ctx context.Context) (err error) {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("engine: already running")
	}
	defer e.running.Store(false)

	// Recover from panics inside a tick and report them instead of crashing the process.
	defer func() {
		if r := recover(); r != nil {
			common.LogError("engine: tick recovered from panic: %v", r)
			e.signalQuit()
			err = fmt.Errorf("engine: tick panicked: %v", r)
		}
	}()

	ticker := time.NewTicker(e.TickRate())
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal Run to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}
