package common

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, 3, Coalesce(3, 4))
}

func TestPositive(t *testing.T) {
	assert.Equal(t, 5, Positive(5, 16))
	assert.Equal(t, 16, Positive(0, 16))
	assert.Equal(t, 16, Positive(-2, 16))
	assert.Equal(t, 0.5, Positive(0.5, 1.0))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes[mgl32.Mat4](nil))

	mats := []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(1, 2, 3)}
	data := SliceToBytes(mats)
	require.Len(t, data, 2*MatrixSize)

	// Column-major: the translation sits in elements 12..14 of the second matrix.
	x := math.Float32frombits(binary.LittleEndian.Uint32(data[MatrixSize+12*4:]))
	assert.Equal(t, float32(1), x)

	// The result is a view, not a copy.
	mats[0][0] = 42
	first := math.Float32frombits(binary.LittleEndian.Uint32(data[0:]))
	assert.Equal(t, float32(42), first)
}

func TestMulElem3d(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{-1, 0, 9}, MulElem3d(mgl64.Vec3{1, 5, 3}, mgl64.Vec3{-1, 0, 3}))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogOutput(io.Discard)
		_ = SetLogLevel("info")
	})

	require.NoError(t, SetLogLevel("warn"))
	LogInfo("hidden %d", 1)
	LogWarn("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")

	assert.Error(t, SetLogLevel("loud"))
}

func TestSentinelsWrap(t *testing.T) {
	err := fmt.Errorf("node 7: %w", ErrNodeOutOfRange)
	assert.True(t, errors.Is(err, ErrNodeOutOfRange))
	assert.False(t, errors.Is(err, ErrCyclicHierarchy))
}
