package spray

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// ParamsSize is the byte size of the per-tick parameter block shared by the
// spawn and update kernels. One packed upload per tick is the only
// synchronization channel between host state and GPU state.
const ParamsSize = 352

// FrameState is the retained per-step state owned by the orchestrator.
// Single writer, single reader; no locking required.
type FrameState struct {
	PreviousPosition mgl32.Vec3
	EmitterVelocity  mgl32.Vec3
	Time             float32
	Frame            uint32
}

// frameInputs carries the transient values resolved by uniform staging
// before packing.
type frameInputs struct {
	Origin          mgl32.Vec3
	EmitterVelocity mgl32.Vec3
	Gravity         mgl32.Vec3
	Time            float32
	Dt              float32
	Seed            uint32
}

// stage advances the retained state and resolves this tick's transient
// parameter values. It must run before the emitter position is mutated
// elsewhere in the tick: the previous position recorded here is the one the
// next tick's delta is computed against.
func (st *FrameState) stage(position, gravity mgl32.Vec3, source VelocitySource, dt float32) frameInputs {
	prevPos := st.PreviousPosition
	st.PreviousPosition = position

	if source != nil {
		st.EmitterVelocity = source.EmitterVelocity(position, prevPos, st.EmitterVelocity)
	}

	st.Time += dt
	st.Frame++

	return frameInputs{
		Origin:          position,
		EmitterVelocity: st.EmitterVelocity,
		Gravity:         gravity,
		Time:            st.Time,
		Dt:              dt,
		Seed:            st.Frame*0x9e3779b9 + 1,
	}
}

// packParams serializes the complete uniform set.
//
//	struct SimParams {
//	  origin:             vec3<f32>,  time: f32              --   0,  12
//	  emitter_velocity:   vec3<f32>,  dt: f32                --  16,  28
//	  gravity:            vec3<f32>,  gravity_mod: f32       --  32,  44
//	  start_color:        vec4<f32>                          --  48
//	  start_size:         vec3<f32>,  initial_speed: f32     --  64,  76
//	  emission_volume:    vec3<f32>,  scatter_volume: f32    --  80,  92
//	  noise_offset:       vec3<f32>,  noise_amplitude: f32   --  96, 108
//	  noise_offset_speed: vec3<f32>,  noise_scale: f32       -- 112, 124
//	  start_rotation:     vec4<f32> (quat xyzw)              -- 128
//	  mass_range:         vec2<f32>,  momentum_range: vec2   -- 144, 152
//	  lifespan_range:     vec2<f32>,  speed_range: vec2      -- 160, 168
//	  emission_count: u32, shape: u32,
//	  noise_type: u32, align_to_direction: u32               -- 176..188
//	  inherit_velocity: f32, randomize_direction: f32,
//	  position_jitter: f32, rotation_rate: f32               -- 192..204
//	  seed: u32, vertex_count: u32,
//	  triangle_count: u32, pad: u32                          -- 208..220
//	  mesh_world:  mat4x4<f32>                               -- 224
//	  mesh_normal: mat4x4<f32>                               -- 288
//	}                                                        -- 352 bytes
//
// The layout is mirrored by the WGSL SimParams struct in both kernels.
func packParams(cfg *Config, in frameInputs) []byte {
	buf := make([]byte, ParamsSize)

	putVec3 := func(off int, v mgl32.Vec3) {
		putF32(buf, off, v[0])
		putF32(buf, off+4, v[1])
		putF32(buf, off+8, v[2])
	}
	putU32 := func(off int, v uint32) {
		binary.LittleEndian.PutUint32(buf[off:], v)
	}

	putVec3(0, in.Origin)
	putF32(buf, 12, in.Time)
	putVec3(16, in.EmitterVelocity)
	putF32(buf, 28, in.Dt)
	putVec3(32, in.Gravity)
	putF32(buf, 44, cfg.GravityModifier)

	putF32(buf, 48, cfg.StartColor[0])
	putF32(buf, 52, cfg.StartColor[1])
	putF32(buf, 56, cfg.StartColor[2])
	putF32(buf, 60, cfg.StartColor[3])

	putVec3(64, cfg.StartSize)
	putF32(buf, 76, cfg.InitialSpeed)
	putVec3(80, cfg.EmissionVolume)
	putF32(buf, 92, cfg.ScatterVolume)
	putVec3(96, cfg.NoiseOffset)
	putF32(buf, 108, cfg.NoiseAmplitude)
	putVec3(112, cfg.NoiseOffsetSpeed)
	putF32(buf, 124, cfg.NoiseScale)

	putF32(buf, 128, cfg.StartRotation.V[0])
	putF32(buf, 132, cfg.StartRotation.V[1])
	putF32(buf, 136, cfg.StartRotation.V[2])
	putF32(buf, 140, cfg.StartRotation.W)

	putF32(buf, 144, cfg.MassRange[0])
	putF32(buf, 148, cfg.MassRange[1])
	putF32(buf, 152, cfg.MomentumRange[0])
	putF32(buf, 156, cfg.MomentumRange[1])
	putF32(buf, 160, cfg.LifespanRange[0])
	putF32(buf, 164, cfg.LifespanRange[1])
	putF32(buf, 168, cfg.VelocityRange[0])
	putF32(buf, 172, cfg.VelocityRange[1])

	emission := cfg.EmissionCount
	if emission > MaxParticles {
		emission = MaxParticles
	}
	shape := cfg.Shape
	if shape == ShapeMeshSurface && (cfg.Mesh == nil || cfg.Mesh.TriangleCount == 0) {
		// Mesh-sourced emission is unavailable; degrade to a point emitter.
		shape = ShapePoint
	}
	putU32(176, emission)
	putU32(180, uint32(shape))
	putU32(184, uint32(cfg.Noise))
	if cfg.AlignToDirection {
		putU32(188, 1)
	}

	putF32(buf, 192, cfg.InheritVelocity)
	putF32(buf, 196, cfg.RandomizeDirection)
	putF32(buf, 200, cfg.PositionJitter)
	putF32(buf, 204, cfg.RotationRate)

	putU32(208, in.Seed)

	meshWorld := mgl32.Ident4()
	meshNormal := mgl32.Ident4()
	if cfg.Mesh != nil {
		putU32(212, cfg.Mesh.VertexCount)
		putU32(216, cfg.Mesh.TriangleCount)
		meshWorld = cfg.Mesh.World
		meshNormal = cfg.Mesh.NormalMatrix()
	}
	for i, v := range meshWorld {
		putF32(buf, 224+i*4, v)
	}
	for i, v := range meshNormal {
		putF32(buf, 288+i*4, v)
	}

	return buf
}
