package spray

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EmissionShape selects the geometric distribution new particles are
// scattered over.
type EmissionShape uint32

const (
	ShapePoint EmissionShape = iota
	ShapeBoxVolume
	ShapeSphereVolume
	ShapeMeshSurface
)

// NoiseType selects the displacement field applied by the update kernel.
type NoiseType uint32

const (
	NoiseOff NoiseType = iota
	NoisePeriodic
	NoiseTurbulent
)

// VelocityMode selects where the emitter's inherited velocity comes from.
type VelocityMode uint32

const (
	// VelocityParentBody reads the parent's physics body velocity.
	VelocityParentBody VelocityMode = iota
	// VelocityTransformDelta derives velocity from the emitter's
	// frame-to-frame displacement.
	VelocityTransformDelta
)

// Config is the host-supplied parameter set, read each tick and never
// mutated by the simulation core. Ranges are (min, max) pairs sampled
// uniformly at spawn.
type Config struct {
	MassRange     [2]float32
	MomentumRange [2]float32
	LifespanRange [2]float32

	StartSize     mgl32.Vec3
	StartRotation mgl32.Quat

	PrewarmFrames int

	InheritVelocity float32 // fraction of emitter velocity passed to newborns
	VelocityMode    VelocityMode
	GravityModifier float32

	Shape              EmissionShape
	EmissionCount      uint32 // live-target particle budget, <= MaxParticles
	InitialSpeed       float32
	PositionJitter     float32
	RandomizeDirection float32 // 0 = configured direction, 1 = fully random
	EmissionVolume     mgl32.Vec3
	ScatterVolume      float32 // fraction of the volume interior used

	Mesh *MeshEmitter // optional, ShapeMeshSurface degrades to point when nil

	AlignToDirection bool
	RotationRate     float32 // radians/sec when not aligning

	StartColor mgl32.Vec4

	LifeRamp      *RampTexture // color over normalized life, optional
	VelocityRamp  *RampTexture // color over speed, optional
	VelocityRange [2]float32   // speed range normalizing the velocity ramp

	Noise            NoiseType
	NoiseAmplitude   float32
	NoiseScale       float32
	NoiseOffset      mgl32.Vec3
	NoiseOffsetSpeed mgl32.Vec3
}

// DefaultConfig returns the stock emitter parameters.
func DefaultConfig() Config {
	return Config{
		MassRange:          [2]float32{0.5, 0.5},
		MomentumRange:      [2]float32{0.95, 0.95},
		LifespanRange:      [2]float32{0.5, 1.0},
		StartSize:          mgl32.Vec3{0.1, 0.1, 0.1},
		StartRotation:      mgl32.QuatIdent(),
		PrewarmFrames:      0,
		InheritVelocity:    0,
		VelocityMode:       VelocityParentBody,
		GravityModifier:    1,
		Shape:              ShapePoint,
		EmissionCount:      65000,
		InitialSpeed:       5,
		PositionJitter:     0,
		RandomizeDirection: 0.1,
		EmissionVolume:     mgl32.Vec3{1, 1, 1},
		ScatterVolume:      0,
		AlignToDirection:   false,
		RotationRate:       0,
		StartColor:         mgl32.Vec4{1, 1, 1, 1},
		VelocityRange:      [2]float32{0, 10},
		Noise:              NoiseOff,
		NoiseAmplitude:     0,
		NoiseScale:         1,
	}
}
