package spray

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewMeshEmitter_RejectsDegenerateInput(t *testing.T) {
	_, err := NewMeshEmitter(nil, nil, nil, nil, mgl32.Ident4())
	assert.Error(t, err)

	positions := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	_, err = NewMeshEmitter(nil, positions, positions[:2], []uint32{0, 1, 2}, mgl32.Ident4())
	assert.Error(t, err, "normal count must match vertex count")

	_, err = NewMeshEmitter(nil, positions, positions, []uint32{0, 1}, mgl32.Ident4())
	assert.Error(t, err, "needs at least one full triangle")
}

func TestPackMeshVertices(t *testing.T) {
	positions := []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}}
	normals := []mgl32.Vec3{{0, 1, 0}, {0, 0, 1}}

	data := packMeshVertices(positions, normals)
	assert.Len(t, data, 2*meshVertexStride)

	// Second vertex record starts at one stride.
	assert.Equal(t, float32(4), getF32(data, meshVertexStride))
	assert.Equal(t, float32(5), getF32(data, meshVertexStride+4))
	// Normal sits at offset 16 within the record.
	assert.Equal(t, float32(1), getF32(data, meshVertexStride+24))
}

func TestMeshEmitter_NormalMatrix(t *testing.T) {
	m := &MeshEmitter{World: mgl32.Scale3D(2, 2, 2)}
	n := m.NormalMatrix()
	// Inverse-transpose of a uniform scale is the reciprocal scale.
	assert.InDelta(t, 0.5, n.At(0, 0), 1e-6)
	assert.InDelta(t, 0.5, n.At(1, 1), 1e-6)
	assert.InDelta(t, 0.5, n.At(2, 2), 1e-6)
}

func TestMeshEmitter_ReleaseNilSafe(t *testing.T) {
	var m *MeshEmitter
	m.Release() // must not panic
}
