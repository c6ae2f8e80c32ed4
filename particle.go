package spray

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Thread-group and capacity constants. The particle buffer holds exactly
// MaxParticles slots: a 64x64 grid of 16x16 workgroups. The two constants
// are tied together; changing ThreadsPerGroupAxis requires recomputing
// MaxParticles so that the full-capacity dispatch stays square.
const (
	ThreadsPerGroupAxis = 16
	ThreadsPerGroup     = ThreadsPerGroupAxis * ThreadsPerGroupAxis
	MaxGroupsPerAxis    = 64
	MaxParticles        = MaxGroupsPerAxis * MaxGroupsPerAxis * ThreadsPerGroup
)

// ParticleStride is the byte size of one particle slot. It matches the WGSL
// struct in shaders/spawn.wgsl and shaders/update.wgsl field for field:
//
//	position: vec3<f32>   -- offset 0
//	age:      f32         -- offset 12
//	velocity: vec3<f32>   -- offset 16
//	lifespan: f32         -- offset 28
//	color:    vec4<f32>   -- offset 32
//	scale:    vec3<f32>   -- offset 48
//	mass:     f32         -- offset 60
//	momentum: f32         -- offset 64
//	id:       f32         -- offset 68
//	pad:      2 x f32     -- offset 72
//	rotation: mat4x4<f32> -- offset 80
//	                      -> 144 bytes
//
// Stride and field order are part of the kernel contract; a mismatch
// silently corrupts every field.
const ParticleStride = 144

// Particle is the host-side view of one slot in the particle buffer.
// Plain floats only, no internal pointers. Color is not clamped to [0,1]
// so ramps can carry HDR intensities.
type Particle struct {
	Position mgl32.Vec3
	Age      float32
	Velocity mgl32.Vec3
	Lifespan float32
	Color    mgl32.Vec4
	Scale    mgl32.Vec3
	Mass     float32
	Momentum float32
	ID       float32
	Rotation mgl32.Mat4
}

// Expired reports whether the slot is eligible for respawn.
func (p *Particle) Expired() bool {
	return p.Age >= p.Lifespan
}

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func getF32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

// EncodeTo serializes the particle into buf at the layout above.
// buf must be at least ParticleStride bytes.
func (p *Particle) EncodeTo(buf []byte) {
	putF32(buf, 0, p.Position[0])
	putF32(buf, 4, p.Position[1])
	putF32(buf, 8, p.Position[2])
	putF32(buf, 12, p.Age)
	putF32(buf, 16, p.Velocity[0])
	putF32(buf, 20, p.Velocity[1])
	putF32(buf, 24, p.Velocity[2])
	putF32(buf, 28, p.Lifespan)
	putF32(buf, 32, p.Color[0])
	putF32(buf, 36, p.Color[1])
	putF32(buf, 40, p.Color[2])
	putF32(buf, 44, p.Color[3])
	putF32(buf, 48, p.Scale[0])
	putF32(buf, 52, p.Scale[1])
	putF32(buf, 56, p.Scale[2])
	putF32(buf, 60, p.Mass)
	putF32(buf, 64, p.Momentum)
	putF32(buf, 68, p.ID)
	putF32(buf, 72, 0)
	putF32(buf, 76, 0)
	for i, v := range p.Rotation {
		putF32(buf, 80+i*4, v)
	}
}

// DecodeFrom reads the particle back out of buf.
func (p *Particle) DecodeFrom(buf []byte) {
	p.Position = mgl32.Vec3{getF32(buf, 0), getF32(buf, 4), getF32(buf, 8)}
	p.Age = getF32(buf, 12)
	p.Velocity = mgl32.Vec3{getF32(buf, 16), getF32(buf, 20), getF32(buf, 24)}
	p.Lifespan = getF32(buf, 28)
	p.Color = mgl32.Vec4{getF32(buf, 32), getF32(buf, 36), getF32(buf, 40), getF32(buf, 44)}
	p.Scale = mgl32.Vec3{getF32(buf, 48), getF32(buf, 52), getF32(buf, 56)}
	p.Mass = getF32(buf, 60)
	p.Momentum = getF32(buf, 64)
	p.ID = getF32(buf, 68)
	for i := range p.Rotation {
		p.Rotation[i] = getF32(buf, 80+i*4)
	}
}

func init() {
	// Capacity and group shape must stay in lockstep.
	if MaxGroupsPerAxis*ThreadsPerGroupAxis*MaxGroupsPerAxis*ThreadsPerGroupAxis != MaxParticles {
		panic("spray: MaxParticles does not match the dispatch grid shape")
	}
}
