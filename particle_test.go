package spray

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticleRoundTrip(t *testing.T) {
	rot := mgl32.HomogRotate3D(1.25, mgl32.Vec3{0.26726124, 0.53452248, 0.80178373})
	in := Particle{
		Position: mgl32.Vec3{1.5, -2.25, 3.75},
		Age:      0.125,
		Velocity: mgl32.Vec3{-0.5, 9.81, 0.001},
		Lifespan: 0.75,
		Color:    mgl32.Vec4{4.0, 2.2, 0.6, 1.5}, // HDR, deliberately > 1
		Scale:    mgl32.Vec3{0.1, 0.2, 0.3},
		Mass:     0.5,
		Momentum: 0.95,
		ID:       123456.789,
		Rotation: rot,
	}

	buf := make([]byte, ParticleStride)
	in.EncodeTo(buf)

	var out Particle
	out.DecodeFrom(buf)

	// Bit-identical round trip for every field.
	assert.Equal(t, in, out)
}

func TestParticleExpired(t *testing.T) {
	p := Particle{Age: 0.5, Lifespan: 1.0}
	assert.False(t, p.Expired())

	p.Age = 1.0
	assert.True(t, p.Expired())

	// Zeroed record (the initial buffer state) counts as expired.
	var zero Particle
	assert.True(t, zero.Expired())
}

func TestParticleFieldOffsets(t *testing.T) {
	var p Particle
	p.Age = 7
	p.Momentum = 9
	p.Rotation[0] = 11

	buf := make([]byte, ParticleStride)
	p.EncodeTo(buf)

	require.Equal(t, float32(7), getF32(buf, 12), "age lives at offset 12")
	require.Equal(t, float32(9), getF32(buf, 64), "momentum lives at offset 64")
	require.Equal(t, float32(11), getF32(buf, 80), "rotation starts at offset 80")
}

func TestCapacityGridCoupling(t *testing.T) {
	// The buffer capacity must be exactly the full square dispatch.
	assert.Equal(t, MaxParticles, MaxGroupsPerAxis*MaxGroupsPerAxis*ThreadsPerGroup)
	assert.Equal(t, 1<<20, MaxParticles)
	assert.Equal(t, 256, ThreadsPerGroup)
}
