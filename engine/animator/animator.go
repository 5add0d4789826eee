package animator

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/Carmen-Shannon/oxy-pose/engine/config"
	"github.com/Carmen-Shannon/oxy-pose/engine/model"
)

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	model    model.Model
	defaults config.AnimationConfig

	maxInstances, instanceCount, jointCount uint32

	players []*Player

	// staging is reused every frame; StagedWriteData hands out views into it.
	staging         []byte
	stagedWriteData []SkinningWrite
}

// Animator manages the players of every instance of one Model and stages their skinning
// matrices for upload each frame.
//
// Instances are addressed by a dense index. Removing an instance swap-removes it, so the
// caller must re-point whichever owner held the old last index. All methods are safe for
// concurrent use; a *Player obtained from Player must not be used while PrepareFrame runs.
type Animator interface {
	// Model returns the model shared by every instance.
	//
	// Returns:
	//   - model.Model: the model
	Model() model.Model

	// MaxInstances returns the current instance capacity. It grows automatically.
	//
	// Returns:
	//   - uint32: the capacity
	MaxInstances() uint32

	// InstanceCount returns the current number of registered instances.
	//
	// Returns:
	//   - uint32: the number of active instances
	InstanceCount() uint32

	// JointCount returns the number of joints of the model's skin, zero for static models.
	//
	// Returns:
	//   - uint32: the joint count
	JointCount() uint32

	// AddInstance registers a new instance with a fresh player.
	// If the current capacity is exceeded the animator doubles it.
	//
	// Returns:
	//   - uint32: the index of the newly registered instance
	//   - error: an error if the instance could not be added
	AddInstance() (uint32, error)

	// Grow increases the instance capacity to newMax, preserving all existing players.
	// No-op if newMax is less than or equal to the current capacity.
	//
	// Parameters:
	//   - newMax: the new capacity
	Grow(newMax uint32)

	// RemoveInstance removes the instance at the given index using a swap-remove strategy.
	// Returns the old last index that was moved into the removed slot and whether a swap occurred.
	//
	// Parameters:
	//   - index: the instance index to remove
	//
	// Returns:
	//   - uint32: the old last index that was swapped into the removed slot (only meaningful when bool is true)
	//   - bool: true if the last instance was swapped into the removed slot
	RemoveInstance(index uint32) (uint32, bool)

	// Player returns the player of an instance, or nil if the index is not registered.
	//
	// Parameters:
	//   - index: the instance index
	//
	// Returns:
	//   - *Player: the player or nil
	Player(index uint32) *Player

	// PlayAnimation starts a clip from time zero on an instance.
	//
	// Parameters:
	//   - index: the instance index
	//   - clip: the clip index
	//   - loop: whether the clip wraps at its end
	//
	// Returns:
	//   - error: ErrInstanceOutOfRange or ErrClipOutOfRange
	PlayAnimation(index uint32, clip int, loop bool) error

	// SetAnimationTime sets the playback position of an instance. No-op for unknown instances.
	//
	// Parameters:
	//   - index: the instance index
	//   - time: the clip time in seconds
	SetAnimationTime(index uint32, time float32)

	// SetAnimationSpeed sets the playback rate of an instance. No-op for unknown instances.
	//
	// Parameters:
	//   - index: the instance index
	//   - speed: the playback rate
	SetAnimationSpeed(index uint32, speed float32)

	// PrepareFrame advances every instance's player by deltaTime and stages the resulting
	// skinning matrices as a single write covering all instances. Instance i's matrices
	// start at byte i * JointCount() * GPUJointMatrixSize.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	PrepareFrame(deltaTime float32)

	// StagedWriteData returns and clears the pending skinning matrix writes.
	//
	// Returns:
	//   - []SkinningWrite: the pending writes
	StagedWriteData() []SkinningWrite
}

var _ Animator = &animator{}

// NewAnimator creates an Animator for m with the given options applied.
//
// Panics if m is nil.
//
// Parameters:
//   - m: the model every instance animates
//   - options: optional AnimatorBuilderOption functions
//
// Returns:
//   - Animator: the animator
func NewAnimator(m model.Model, options ...AnimatorBuilderOption) Animator {
	if m == nil {
		panic("animator: NewAnimator requires a non-nil Model")
	}
	a := &animator{
		mu:       &sync.Mutex{},
		model:    m,
		defaults: config.Default().Animation,
	}
	if skin := m.Skin(); skin != nil {
		a.jointCount = uint32(len(skin.Joints))
	}
	for _, opt := range options {
		opt(a)
	}
	if a.maxInstances == 0 {
		a.maxInstances = uint32(max(a.defaults.MaxInstances, 1))
	}
	a.players = make([]*Player, a.maxInstances)
	a.initStaging()
	return a
}

// initStaging sizes the staging buffer for maxInstances.
func (a *animator) initStaging() {
	a.staging = make([]byte, int(a.maxInstances)*int(a.jointCount)*GPUJointMatrixSize)
	a.stagedWriteData = make([]SkinningWrite, 0, 1)
}

func (a *animator) Model() model.Model {
	return a.model
}

func (a *animator) MaxInstances() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxInstances
}

func (a *animator) InstanceCount() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.instanceCount
}

func (a *animator) JointCount() uint32 {
	return a.jointCount
}

func (a *animator) AddInstance() (uint32, error) {
	a.mu.Lock()
	for a.instanceCount >= a.maxInstances {
		// Auto-grow: double capacity (minimum 8). Unlock first because Grow acquires its own lock.
		newCap := max(a.maxInstances*2, 8)
		a.mu.Unlock()
		a.Grow(newCap)
		a.mu.Lock()
	}
	defer a.mu.Unlock()

	idx := a.instanceCount
	a.players[idx] = NewPlayer(a.model, WithPlaybackDefaults(a.defaults))
	a.instanceCount++
	return idx, nil
}

func (a *animator) Grow(newMax uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if newMax <= a.maxInstances {
		return
	}

	players := make([]*Player, newMax)
	copy(players, a.players[:a.instanceCount])
	a.players = players
	a.maxInstances = newMax
	a.initStaging()
	common.LogDebug("animator: %s grew to %d instances", a.model.Name(), newMax)
}

func (a *animator) RemoveInstance(index uint32) (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.instanceCount == 0 || index >= a.instanceCount {
		return 0, false
	}

	last := a.instanceCount - 1
	swapped := index != last
	if swapped {
		a.players[index] = a.players[last]
	}
	a.players[last] = nil
	a.instanceCount--

	return last, swapped
}

func (a *animator) Player(index uint32) *Player {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index >= a.instanceCount {
		return nil
	}
	return a.players[index]
}

func (a *animator) PlayAnimation(index uint32, clip int, loop bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index >= a.instanceCount {
		return fmt.Errorf("instance %d of %d: %w", index, a.instanceCount, common.ErrInstanceOutOfRange)
	}
	return a.players[index].Play(clip, loop)
}

func (a *animator) SetAnimationTime(index uint32, time float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index >= a.instanceCount {
		return
	}
	a.players[index].SetTime(time)
}

func (a *animator) SetAnimationSpeed(index uint32, speed float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index >= a.instanceCount {
		return
	}
	a.players[index].SetSpeed(speed)
}

func (a *animator) PrepareFrame(deltaTime float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := uint32(0); i < a.instanceCount; i++ {
		a.players[i].Update(deltaTime)
	}

	if a.jointCount == 0 || a.instanceCount == 0 {
		return
	}

	stride := int(a.jointCount) * GPUJointMatrixSize
	for i := uint32(0); i < a.instanceCount; i++ {
		MarshalJointMatrices(a.staging[int(i)*stride:], a.players[i].SkinningMatrices())
	}

	// wgpu copies buffer data internally, so reusing the same staging
	// buffer each frame is safe.
	a.stagedWriteData = append(a.stagedWriteData[:0], SkinningWrite{
		Offset: 0,
		Data:   a.staging[:int(a.instanceCount)*stride],
	})
}

func (a *animator) StagedWriteData() []SkinningWrite {
	a.mu.Lock()
	defer a.mu.Unlock()
	w := a.stagedWriteData
	a.stagedWriteData = a.stagedWriteData[:0]
	return w
}
