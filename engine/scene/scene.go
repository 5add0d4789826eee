package scene

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/Carmen-Shannon/oxy-pose/engine/animator"
	"github.com/Carmen-Shannon/oxy-pose/engine/config"
	"github.com/Carmen-Shannon/oxy-pose/engine/game_object"
	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/Carmen-Shannon/oxy-pose/engine/profiler"
	"github.com/Carmen-Shannon/oxy-pose/engine/transform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// Scene is a registry of GameObjects, the Hierarchy linking them, and one Animator per
// Model shared by every object that uses it. Update advances every animator in parallel
// and then drives each object's animation layer from its player's pose.
// Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// SetName sets the scene's name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Active returns whether the engine updates this scene.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive sets whether the engine updates this scene.
	//
	// Parameters:
	//   - active: true to activate
	SetActive(active bool)

	// Count returns the number of registered objects.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// Add registers obj, assigning a new ID if it has none. Objects with a Model get an
	// instance in that model's Animator, which is created on first use.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uuid.UUID: the object's ID
	Add(obj game_object.GameObject) uuid.UUID

	// Get returns the object with the given ID, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uuid.UUID) game_object.GameObject

	// Remove unregisters an object, detaches it from the hierarchy and releases its
	// animator instance. No-op for unknown IDs.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uuid.UUID)

	// Clear removes every object, animator and hierarchy link.
	Clear()

	// Animator returns the Animator serving m, or nil if no object uses m.
	//
	// Parameters:
	//   - m: the model
	//
	// Returns:
	//   - animator.Animator: the animator or nil
	Animator(m model.Model) animator.Animator

	// SetParent makes parent the parent of child.
	//
	// Parameters:
	//   - child: the child ID
	//   - parent: the parent ID
	//
	// Returns:
	//   - error: ErrUnknownEntity, ErrSelfParent or ErrCyclicHierarchy
	SetParent(child, parent uuid.UUID) error

	// RemoveParent makes child a root.
	//
	// Parameters:
	//   - child: the child ID
	RemoveParent(child uuid.UUID)

	// Parent returns the parent of child and whether it has one.
	//
	// Parameters:
	//   - child: the child ID
	//
	// Returns:
	//   - uuid.UUID: the parent ID
	//   - bool: true if child has a parent
	Parent(child uuid.UUID) (uuid.UUID, bool)

	// Children returns a copy of parent's children.
	//
	// Parameters:
	//   - parent: the parent ID
	//
	// Returns:
	//   - []uuid.UUID: the children in insertion order
	Children(parent uuid.UUID) []uuid.UUID

	// Sync returns an object's effective transform without regard to its ancestors.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - transform.Transform: world·local·animation decomposed
	//   - error: ErrUnknownEntity
	Sync(id uuid.UUID) (transform.Transform, error)

	// Propagate returns an object's transform composed through all of its ancestors.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - transform.Transform: the world transform
	//   - error: ErrUnknownEntity
	Propagate(id uuid.UUID) (transform.Transform, error)

	// SnapshotHierarchy captures the hierarchy by object label.
	//
	// Returns:
	//   - HierarchySnapshot: the links between labeled objects
	SnapshotHierarchy() HierarchySnapshot

	// ApplyHierarchy re-parents objects by label.
	//
	// Parameters:
	//   - snap: the snapshot to apply
	//
	// Returns:
	//   - error: ErrUnknownLabel or a SetParent error
	ApplyHierarchy(snap HierarchySnapshot) error

	// Update advances every animator by deltaTime on the compute pool, then sets or clears
	// each enabled object's animation layer from the pose of its model's root node. Roots
	// that move skin joints never drive the layer; skinning already carries their motion.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)

	// StagedWriteData drains the skinning writes staged by the last Update, per model.
	//
	// Returns:
	//   - map[model.Model][]animator.SkinningWrite: the pending writes
	StagedWriteData() map[model.Model][]animator.SkinningWrite

	// Upload drains the staged writes and submits each model's writes to the buffer
	// bufferFor returns for it. Models with a nil buffer are skipped.
	//
	// Parameters:
	//   - w: the queue performing the copies
	//   - bufferFor: resolves a model's joint matrix buffer
	//
	// Returns:
	//   - error: the first upload error
	Upload(w animator.BufferWriter, bufferFor func(model.Model) *wgpu.Buffer) error

	// Close stops the compute pool. The scene must not be updated afterwards.
	Close()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	animatorPool map[model.Model]animator.Animator
	layerRoots   map[model.Model]int
	registry     map[uuid.UUID]game_object.GameObject
	hierarchy    *Hierarchy

	animationConfig config.AnimationConfig
	profiler        *profiler.Profiler

	// computePool manages a bounded set of reusable goroutines for the parallel
	// animator phase of Update. Workers persist across frames.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
	queueSize      int
	idleTimeout    time.Duration

	closeOnce sync.Once
}

var _ Scene = &scene{}

// NewScene creates a new, inactive Scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	defaults := config.Default()
	s := &scene{
		mu:              &sync.RWMutex{},
		name:            name,
		animatorPool:    make(map[model.Model]animator.Animator),
		layerRoots:      make(map[model.Model]int),
		registry:        make(map[uuid.UUID]game_object.GameObject),
		hierarchy:       NewHierarchy(),
		animationConfig: defaults.Animation,
		computeWorkers:  max(runtime.NumCPU()-1, 1),
		queueSize:       defaults.Scene.QueueSize,
		idleTimeout:     defaults.Scene.IdleTimeout(),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the compute pool after options so WithComputeWorkers can override the default.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, s.queueSize, s.idleTimeout)
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add registers obj. Caller must hold s.mu write lock.
func (s *scene) add(obj game_object.GameObject) uuid.UUID {
	if obj.ID() == uuid.Nil {
		obj.SetID(uuid.New())
	}
	if _, exists := s.registry[obj.ID()]; exists {
		return obj.ID()
	}

	if mdl := obj.Model(); mdl != nil {
		anim, exists := s.animatorPool[mdl]
		if !exists {
			anim = animator.NewAnimator(mdl, animator.WithAnimationConfig(s.animationConfig))
			s.animatorPool[mdl] = anim
			s.layerRoots[mdl] = layerRoot(mdl)
		}
		idx, err := anim.AddInstance()
		if err != nil {
			panic(fmt.Sprintf("scene: failed to add instance for model %q: %v", mdl.Name(), err))
		}
		obj.SetAnimator(anim)
		obj.SetAnimatorInstanceID(int(idx))
	}

	s.registry[obj.ID()] = obj
	common.LogDebug("scene %s: added %s (%q)", s.name, obj.ID(), obj.Label())
	return obj.ID()
}

func (s *scene) Get(id uuid.UUID) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.registry[id]
	if !exists {
		return
	}
	delete(s.registry, id)
	s.hierarchy.Detach(id)

	// Swap-remove the instance from the animator
	if anim := obj.Animator(); anim != nil {
		removedIdx := obj.AnimatorInstanceID()
		if removedIdx >= 0 {
			swappedFrom, swapped := anim.RemoveInstance(uint32(removedIdx))
			if swapped {
				// The instance at swappedFrom was moved into removedIdx; re-point its owner.
				for _, o := range s.registry {
					if o.Animator() == anim && o.AnimatorInstanceID() == int(swappedFrom) {
						o.SetAnimatorInstanceID(removedIdx)
						break
					}
				}
			}
			obj.SetAnimatorInstanceID(-1)
		}
	}
	common.LogDebug("scene %s: removed %s", s.name, id)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.animatorPool = make(map[model.Model]animator.Animator)
	s.layerRoots = make(map[model.Model]int)
	s.registry = make(map[uuid.UUID]game_object.GameObject)
	s.hierarchy = NewHierarchy()
}

func (s *scene) Animator(m model.Model) animator.Animator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.animatorPool[m]
}

func (s *scene) SetParent(child, parent uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []uuid.UUID{child, parent} {
		if _, ok := s.registry[id]; !ok {
			return fmt.Errorf("set parent: %s: %w", id, common.ErrUnknownEntity)
		}
	}
	if err := s.hierarchy.SetParent(child, parent); err != nil {
		common.LogWarn("scene %s: rejected re-parent: %v", s.name, err)
		return err
	}
	return nil
}

func (s *scene) RemoveParent(child uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hierarchy.RemoveParent(child)
}

func (s *scene) Parent(child uuid.UUID) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchy.Parent(child)
}

func (s *scene) Children(parent uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchy.Children(parent)
}

func (s *scene) Sync(id uuid.UUID) (transform.Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.registry[id]
	if !ok {
		return transform.Transform{}, fmt.Errorf("sync %s: %w", id, common.ErrUnknownEntity)
	}
	return obj.Transform().Sync(), nil
}

func (s *scene) Propagate(id uuid.UUID) (transform.Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Propagate(s.hierarchy, s.lookup, id)
}

// lookup resolves registered objects for Propagate. Caller must hold s.mu.
func (s *scene) lookup(id uuid.UUID) (*transform.EntityTransform, bool) {
	obj, ok := s.registry[id]
	if !ok {
		return nil, false
	}
	return obj.Transform(), true
}

func (s *scene) SnapshotHierarchy() HierarchySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	labels := make(map[uuid.UUID]string, len(s.registry))
	for id, obj := range s.registry {
		labels[id] = obj.Label()
	}
	return SnapshotHierarchy(s.hierarchy, labels)
}

func (s *scene) ApplyHierarchy(snap HierarchySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]uuid.UUID, len(s.registry))
	for id, obj := range s.registry {
		if l := obj.Label(); l != "" {
			ids[l] = id
		}
	}
	return snap.Apply(s.hierarchy, ids)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Phase 1: advance each animator on the compute pool. A WaitGroup provides the
	// per-frame barrier since pool.Wait() only returns once workers exit.
	var wg sync.WaitGroup
	taskID := 0
	posed := 0
	for _, a := range s.animatorPool {
		if a.InstanceCount() == 0 {
			continue
		}
		posed += int(a.InstanceCount())
		wg.Add(1)
		aCap := a
		id := taskID
		taskID++
		s.computePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				aCap.PrepareFrame(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: drive animation layers from the fresh poses.
	for _, obj := range s.registry {
		if !obj.Enabled() {
			continue
		}
		root := model.NoParent
		if m := obj.Model(); m != nil {
			root = s.layerRoots[m]
		}
		driveAnimationLayer(obj, root)
	}

	if s.profiler != nil {
		s.profiler.AddPoses(posed)
		s.profiler.Tick()
	}
}

// driveAnimationLayer sets obj's animation layer from the pose of node root while the
// active clip animates that node, and clears it otherwise. A negative root always clears.
func driveAnimationLayer(obj game_object.GameObject, root int) {
	et := obj.Transform()
	p := obj.Player()
	if p == nil || root < 0 {
		et.ClearAnimation()
		return
	}
	clip, ok := p.ActiveClip()
	if !ok || !obj.Model().Animation(clip).Animates(root) {
		et.ClearAnimation()
		return
	}
	et.SetAnimation(transform.FromNodeTransform(p.NodeTransform(root)))
}

// layerRoot returns the node whose pose drives an entity's animation layer, or -1 when
// no node may. That is the skin's skeleton root when present, else the model's first
// root node. A node that is a skin joint or an ancestor of one is excluded: its motion
// already reaches the skinning matrices and would otherwise be applied twice.
func layerRoot(m model.Model) int {
	root := model.NoParent
	if skin := m.Skin(); skin != nil && skin.SkeletonRoot >= 0 {
		root = skin.SkeletonRoot
	} else if roots := m.RootNodes(); len(roots) > 0 {
		root = roots[0]
	}
	if root < 0 {
		return model.NoParent
	}

	skin := m.Skin()
	if skin == nil {
		return root
	}
	nodes := m.Nodes()
	for _, joint := range skin.Joints {
		for n := joint; n != model.NoParent; n = nodes[n].Parent {
			if n == root {
				return model.NoParent
			}
		}
	}
	return root
}

func (s *scene) StagedWriteData() map[model.Model][]animator.SkinningWrite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.Model][]animator.SkinningWrite, len(s.animatorPool))
	for m, a := range s.animatorPool {
		if writes := a.StagedWriteData(); len(writes) > 0 {
			out[m] = writes
		}
	}
	return out
}

func (s *scene) Upload(w animator.BufferWriter, bufferFor func(model.Model) *wgpu.Buffer) error {
	for m, writes := range s.StagedWriteData() {
		buf := bufferFor(m)
		if buf == nil {
			continue
		}
		if err := animator.Upload(w, buf, writes); err != nil {
			return fmt.Errorf("scene %s: model %q: %w", s.Name(), m.Name(), err)
		}
	}
	return nil
}

func (s *scene) Close() {
	s.closeOnce.Do(func() {
		s.computePool.Stop()
	})
}
