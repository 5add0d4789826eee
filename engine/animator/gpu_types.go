package animator

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUJointMatrixSize is the std430 size of one mat4x4<f32> skinning matrix.
const GPUJointMatrixSize = common.MatrixSize

// MarshalJointMatrices copies skinning matrices into dst as column-major mat4x4<f32>
// values, the layout a WGSL storage array<mat4x4<f32>> expects. mgl32.Mat4 is already
// column-major [16]float32, so the bytes are the matrices' memory in host byte order,
// which is little-endian on every platform wgpu targets.
// dst must hold at least len(mats)*GPUJointMatrixSize bytes.
//
// Parameters:
//   - dst: the destination buffer
//   - mats: the matrices to write
//
// Returns:
//   - int: the number of bytes written
func MarshalJointMatrices(dst []byte, mats []mgl32.Mat4) int {
	return copy(dst, common.SliceToBytes(mats))
}

// SkinningWrite is one staged upload of skinning matrices into a joint matrix buffer.
type SkinningWrite struct {
	// Offset is the byte offset in the destination buffer.
	Offset uint64

	// Data is the serialized matrices. It is owned by the animator and only valid until
	// its next PrepareFrame.
	Data []byte
}

// BufferWriter copies bytes into a GPU buffer. *wgpu.Queue satisfies it.
type BufferWriter interface {
	WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error
}

var _ BufferWriter = (*wgpu.Queue)(nil)

// Upload submits staged skinning writes to buf through w, stopping at the first failure.
//
// Parameters:
//   - w: the queue or other writer performing the copy
//   - buf: the destination joint matrix buffer
//   - writes: the staged writes, usually from StagedWriteData
//
// Returns:
//   - error: the first write error, wrapped with its offset
func Upload(w BufferWriter, buf *wgpu.Buffer, writes []SkinningWrite) error {
	for _, wr := range writes {
		if len(wr.Data) == 0 {
			continue
		}
		if err := w.WriteBuffer(buf, wr.Offset, wr.Data); err != nil {
			return fmt.Errorf("failed to upload skinning matrices at offset %d: %w", wr.Offset, err)
		}
	}
	return nil
}
