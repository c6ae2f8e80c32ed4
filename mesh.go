package spray

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// meshVertexStride is the packed size of one mesh vertex record:
// position vec3 + pad, normal vec3 + pad, mirroring the WGSL MeshVertex.
const meshVertexStride = 32

// MeshEmitter adapts a renderable mesh into the two read-only buffers the
// spawn kernel samples for mesh-surface emission.
type MeshEmitter struct {
	VertexBuf   *wgpu.Buffer
	TriangleBuf *wgpu.Buffer

	VertexCount   uint32
	TriangleCount uint32

	// World places mesh-local sample points into world space.
	World mgl32.Mat4

	released bool
}

// NewMeshEmitter uploads the mesh's vertex and triangle data. positions and
// normals must have equal length; indices holds three entries per triangle.
func NewMeshEmitter(device *wgpu.Device, positions, normals []mgl32.Vec3, indices []uint32, world mgl32.Mat4) (*MeshEmitter, error) {
	if len(positions) == 0 || len(indices) < 3 {
		return nil, fmt.Errorf("mesh emitter needs at least one triangle, got %d vertices / %d indices", len(positions), len(indices))
	}
	if len(normals) != len(positions) {
		return nil, fmt.Errorf("mesh emitter vertex/normal count mismatch: %d vs %d", len(positions), len(normals))
	}

	vertexBuf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "MeshEmitterVertices",
		Contents: packMeshVertices(positions, normals),
		Usage:    wgpu.BufferUsageStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh vertex buffer: %w", err)
	}

	triangleBuf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "MeshEmitterTriangles",
		Contents: wgpu.ToBytes(indices),
		Usage:    wgpu.BufferUsageStorage,
	})
	if err != nil {
		vertexBuf.Release()
		return nil, fmt.Errorf("failed to create mesh triangle buffer: %w", err)
	}

	return &MeshEmitter{
		VertexBuf:     vertexBuf,
		TriangleBuf:   triangleBuf,
		VertexCount:   uint32(len(positions)),
		TriangleCount: uint32(len(indices) / 3),
		World:         world,
	}, nil
}

// packMeshVertices interleaves positions and normals at meshVertexStride,
// mirroring the WGSL MeshVertex layout.
func packMeshVertices(positions, normals []mgl32.Vec3) []byte {
	data := make([]byte, len(positions)*meshVertexStride)
	for i, p := range positions {
		off := i * meshVertexStride
		putF32(data, off, p[0])
		putF32(data, off+4, p[1])
		putF32(data, off+8, p[2])
		n := normals[i]
		putF32(data, off+16, n[0])
		putF32(data, off+20, n[1])
		putF32(data, off+24, n[2])
	}
	return data
}

// NormalMatrix returns the inverse-transpose of World, used to carry mesh
// normals into world space.
func (m *MeshEmitter) NormalMatrix() mgl32.Mat4 {
	return m.World.Inv().Transpose()
}

// Release frees both mesh buffers. Safe to call once.
func (m *MeshEmitter) Release() {
	if m == nil || m.released {
		return
	}
	m.released = true
	m.VertexBuf.Release()
	m.TriangleBuf.Release()
}
