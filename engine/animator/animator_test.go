package animator

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/Carmen-Shannon/oxy-pose/engine/config"
	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedWrite struct {
	offset uint64
	data   []byte
}

type fakeQueue struct {
	writes []recordedWrite
	err    error
}

func (q *fakeQueue) WriteBuffer(_ *wgpu.Buffer, offset uint64, data []byte) error {
	if q.err != nil {
		return q.err
	}
	q.writes = append(q.writes, recordedWrite{offset: offset, data: append([]byte(nil), data...)})
	return nil
}

func readMatrix(b []byte) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range 16 {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return m
}

func TestAnimatorAddAndGrow(t *testing.T) {
	a := NewAnimator(armModel(), WithMaxInstances(2))
	assert.Equal(t, uint32(2), a.MaxInstances())
	assert.Equal(t, uint32(3), a.JointCount())

	for i := range 3 {
		idx, err := a.AddInstance()
		require.NoError(t, err)
		assert.Equal(t, uint32(i), idx)
	}
	assert.Equal(t, uint32(3), a.InstanceCount())
	assert.Equal(t, uint32(8), a.MaxInstances())
	assert.NotNil(t, a.Player(2))
	assert.Nil(t, a.Player(3))

	a.Grow(4)
	assert.Equal(t, uint32(8), a.MaxInstances())
}

func TestAnimatorCapacityFromConfig(t *testing.T) {
	cfg := config.Default().Animation
	cfg.MaxInstances = 5
	cfg.DefaultLooping = false
	a := NewAnimator(armModel(), WithAnimationConfig(cfg))
	assert.Equal(t, uint32(5), a.MaxInstances())

	idx, err := a.AddInstance()
	require.NoError(t, err)
	require.NoError(t, a.Player(idx).SetActiveClip(0))
	assert.False(t, a.Player(idx).Looping())
}

func TestAnimatorRemoveInstanceSwaps(t *testing.T) {
	a := NewAnimator(armModel())
	for range 3 {
		_, err := a.AddInstance()
		require.NoError(t, err)
	}
	last := a.Player(2)

	old, swapped := a.RemoveInstance(0)
	assert.True(t, swapped)
	assert.Equal(t, uint32(2), old)
	assert.Same(t, last, a.Player(0))
	assert.Equal(t, uint32(2), a.InstanceCount())

	old, swapped = a.RemoveInstance(1)
	assert.False(t, swapped)
	assert.Equal(t, uint32(1), old)

	_, swapped = a.RemoveInstance(7)
	assert.False(t, swapped)
	assert.Equal(t, uint32(1), a.InstanceCount())
}

func TestAnimatorPlaybackControls(t *testing.T) {
	a := NewAnimator(armModel())
	idx, err := a.AddInstance()
	require.NoError(t, err)

	require.NoError(t, a.PlayAnimation(idx, 0, false))
	assert.ErrorIs(t, a.PlayAnimation(idx, 5, false), common.ErrClipOutOfRange)
	assert.ErrorIs(t, a.PlayAnimation(9, 0, false), common.ErrInstanceOutOfRange)

	a.SetAnimationSpeed(idx, 2)
	a.SetAnimationTime(idx, 0.5)
	a.SetAnimationSpeed(9, 2)
	a.SetAnimationTime(9, 2)

	a.PrepareFrame(0.25)
	assert.InDelta(t, 1, a.Player(idx).Time(), 1e-6)
}

func TestAnimatorPrepareFrameStagesAllInstances(t *testing.T) {
	a := NewAnimator(armModel())
	first, err := a.AddInstance()
	require.NoError(t, err)
	second, err := a.AddInstance()
	require.NoError(t, err)

	require.NoError(t, a.PlayAnimation(second, 0, true))
	a.PrepareFrame(2)

	writes := a.StagedWriteData()
	require.Len(t, writes, 1)
	assert.Equal(t, uint64(0), writes[0].Offset)
	stride := 3 * GPUJointMatrixSize
	require.Len(t, writes[0].Data, 2*stride)

	// the first instance has no clip and stays in bind pose
	assertMat4(t, mgl32.Ident4(), readMatrix(writes[0].Data[int(first)*stride:]))

	// the second instance's elbow is raised 2 units at t = 2
	elbow := readMatrix(writes[0].Data[int(second)*stride:])
	assertVec3(t, mgl32.Vec3{0, 2, 0}, translationOf(elbow))

	assert.Empty(t, a.StagedWriteData())
}

func TestAnimatorStaticModelStagesNothing(t *testing.T) {
	a := NewAnimator(model.NewModel(model.WithName("crate"), model.WithNodes([]model.Node{{Parent: model.NoParent, Transform: model.IdentityNodeTransform()}})))
	_, err := a.AddInstance()
	require.NoError(t, err)

	a.PrepareFrame(1)
	assert.Empty(t, a.StagedWriteData())
	assert.Zero(t, a.JointCount())
}

func TestAnimatorConcurrentPrepare(t *testing.T) {
	a := NewAnimator(armModel())
	for range 4 {
		idx, err := a.AddInstance()
		require.NoError(t, err)
		require.NoError(t, a.PlayAnimation(idx, 1, true))
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.PrepareFrame(0.01)
		}()
	}
	wg.Wait()
	assert.InDelta(t, 0.08, a.Player(0).Time(), 1e-5)
}

func TestUpload(t *testing.T) {
	q := &fakeQueue{}
	writes := []SkinningWrite{
		{Offset: 0, Data: []byte{1, 2}},
		{Offset: 64, Data: nil},
		{Offset: 128, Data: []byte{3}},
	}
	require.NoError(t, Upload(q, nil, writes))
	require.Len(t, q.writes, 2)
	assert.Equal(t, uint64(128), q.writes[1].offset)
	assert.Equal(t, []byte{3}, q.writes[1].data)

	boom := errors.New("device lost")
	err := Upload(&fakeQueue{err: boom}, nil, writes)
	assert.ErrorIs(t, err, boom)
}

func TestMarshalJointMatrices(t *testing.T) {
	mats := []mgl32.Mat4{mgl32.Translate3D(1, 2, 3), mgl32.Scale3D(4, 5, 6)}
	buf := make([]byte, 2*GPUJointMatrixSize)
	assert.Equal(t, len(buf), MarshalJointMatrices(buf, mats))
	assert.Equal(t, mats[0], readMatrix(buf))
	assert.Equal(t, mats[1], readMatrix(buf[GPUJointMatrixSize:]))

	// dst is a copy; later writes to the source do not reach it.
	mats[0] = mgl32.Ident4()
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), readMatrix(buf))

	short := make([]byte, GPUJointMatrixSize)
	assert.Equal(t, GPUJointMatrixSize, MarshalJointMatrices(short, mats))
}
