// Package spray is a GPU-resident particle simulator. The host stages one
// packed parameter block per fixed tick and issues two indirectly-sized
// compute dispatches (spawn, then update) against a fixed-capacity particle
// buffer that never returns to the CPU.
package spray

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/drift3d/spray/shaders"
)

type systemState int

const (
	stateUninitialized systemState = iota
	stateReady
	stateStepping
	stateReleased
)

// prewarmDt is the fixed step used when running prewarm cycles.
const prewarmDt = float32(1.0 / 60.0)

// System owns the particle and argument buffers and drives the per-tick
// Stage -> Args -> Spawn -> Update sequence. All mutation of the shared GPU
// buffers happens through dispatches issued from the single orchestrating
// goroutine; the host never reads the particle buffer back.
type System struct {
	// Position is the emitter origin, settable by the host between ticks.
	Position mgl32.Vec3
	// Gravity is the global gravity vector queried from the host world.
	Gravity mgl32.Vec3
	// Velocity resolves the emitter velocity inherited by newborns. When
	// nil, Init derives it from the configured VelocityMode with no parent
	// attached.
	Velocity VelocitySource
	// Log defaults to a no-op logger.
	Log Logger

	device *wgpu.Device
	queue  *wgpu.Queue
	label  string

	cfg   Config
	frame FrameState
	state systemState

	spawnPipeline  *wgpu.ComputePipeline
	updatePipeline *wgpu.ComputePipeline

	particleBuf *wgpu.Buffer
	argsBuf     *wgpu.Buffer
	paramsBuf   *wgpu.Buffer

	spawnParticlesBG  *wgpu.BindGroup
	spawnMeshBG       *wgpu.BindGroup
	updateParticlesBG *wgpu.BindGroup
	updateRampsBG     *wgpu.BindGroup

	// Placeholder mesh buffers keep the spawn bind group valid when no
	// mesh emitter is configured.
	dummyVertexBuf   *wgpu.Buffer
	dummyTriangleBuf *wgpu.Buffer

	// Ramps baked internally when the config leaves them nil; released
	// with the system. Config-supplied ramps are caller-owned.
	ownedRamps []*RampTexture

	argsGroups   uint32
	argsUploaded bool

	// submit issues one staged frame to the device. Swappable so the
	// orchestration sequence is testable without a live adapter.
	submit func(params []byte, groups uint32, refreshArgs bool)
}

// NewSystem builds an uninitialized system. Position, Gravity, Velocity and
// Log may be set before Init; no GPU resources exist until Init runs.
func NewSystem(device *wgpu.Device, cfg Config) *System {
	s := &System{
		Gravity: mgl32.Vec3{0, -9.81, 0},
		Log:     NewNopLogger(),
		device:  device,
		cfg:     cfg,
		label:   "spray-" + uuid.NewString(),
	}
	if device != nil {
		s.queue = device.GetQueue()
	}
	s.submit = s.gpuSubmit
	return s
}

// Config returns the current configuration.
func (s *System) Config() Config {
	return s.cfg
}

// SetConfig swaps the configuration read on the next tick. Emission-count
// changes are picked up by the argument computation automatically.
func (s *System) SetConfig(cfg Config) {
	s.cfg = cfg
}

// Init resolves both kernel entry points, allocates the particle and
// argument buffers at fixed capacity, binds every resource, uploads the
// initial dispatch arguments and runs the configured prewarm cycles.
// Failure to resolve a kernel or allocate a buffer is fatal: the system
// stays unusable and the error is returned.
func (s *System) Init() error {
	if s.state != stateUninitialized {
		return fmt.Errorf("init called twice")
	}
	if s.device == nil {
		return fmt.Errorf("no device")
	}

	if s.Velocity == nil {
		switch s.cfg.VelocityMode {
		case VelocityTransformDelta:
			s.Velocity = TransformDelta{}
		default:
			// Parent-body mode with no parent attached: zero velocity.
			s.Velocity = ParentBody{}
		}
	}

	var err error
	if s.spawnPipeline, err = s.createKernel("spawn", shaders.SpawnWGSL); err != nil {
		return err
	}
	if s.updatePipeline, err = s.createKernel("update", shaders.UpdateWGSL); err != nil {
		s.releasePipelines()
		return err
	}

	if err = s.createBuffers(); err != nil {
		s.releasePipelines()
		return err
	}
	if err = s.createBindGroups(); err != nil {
		s.releaseBuffers()
		s.releasePipelines()
		return err
	}

	s.syncArgs()
	s.state = stateReady
	s.Log.Infof("%s ready: %d slots, %d bytes/slot, emission %d",
		s.label, MaxParticles, ParticleStride, s.cfg.EmissionCount)

	s.prewarm()
	return nil
}

// Step advances the simulation by one fixed tick: stage uniforms, refresh
// the indirect arguments if emission changed, then dispatch spawn and
// update back to back. Spawn runs first so a particle born this tick is
// aged by this tick's update pass; it can therefore expire in its spawn
// frame if its sampled lifespan is under dt.
//
// Dispatches are fire-and-forget. Ordering between the two kernels is
// guaranteed by command-stream ordering, not host synchronization.
func (s *System) Step(dt float32) {
	switch s.state {
	case stateReleased:
		s.Log.Errorf("%s step after release", s.label)
		return
	case stateUninitialized:
		s.Log.Errorf("%s step before init", s.label)
		return
	}
	s.state = stateStepping
	s.step(dt)
}

func (s *System) step(dt float32) {
	in := s.frame.stage(s.Position, s.Gravity, s.Velocity, dt)
	params := packParams(&s.cfg, in)

	groups := DispatchGroups(s.cfg.EmissionCount)
	refresh := !s.argsUploaded || groups != s.argsGroups
	s.argsGroups = groups
	s.argsUploaded = true

	s.submit(params, groups, refresh)
}

// prewarm runs the configured number of full stage+dispatch cycles before
// the system becomes externally observable. Startup latency is traded for
// a steady-state population on the first rendered frame.
func (s *System) prewarm() {
	n := s.cfg.PrewarmFrames
	if n <= 0 {
		return
	}
	s.Log.Debugf("%s prewarming %d cycles", s.label, n)
	for i := 0; i < n; i++ {
		s.step(prewarmDt)
	}
}

// Release frees the particle and argument buffers exactly once, along with
// internally baked ramps, the placeholder mesh buffers and, if a mesh
// emitter was bound, the emitter's buffers. Further Step or Release calls
// are programming errors and degrade to logged no-ops.
func (s *System) Release() {
	if s.state == stateReleased {
		s.Log.Errorf("%s released twice", s.label)
		return
	}
	if s.state == stateUninitialized {
		s.state = stateReleased
		return
	}
	s.state = stateReleased

	s.releaseBindGroups()
	s.releaseBuffers()
	s.releasePipelines()

	for _, r := range s.ownedRamps {
		r.Release()
	}
	s.ownedRamps = nil

	if s.cfg.Mesh != nil {
		s.cfg.Mesh.Release()
	}
	s.Log.Infof("%s released", s.label)
}

func (s *System) createKernel(entryPoint, code string) (*wgpu.ComputePipeline, error) {
	module, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          s.label + "-" + entryPoint,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %q shader module: %w", entryPoint, err)
	}
	defer module.Release()

	pipeline, err := s.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: s.label + "-" + entryPoint,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve kernel entry point %q: %w", entryPoint, err)
	}
	return pipeline, nil
}

func (s *System) createBuffers() error {
	// wgpu guarantees fresh buffers read as zero, which is exactly the
	// all-expired initial record state (age == lifespan == 0).
	particleBuf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: s.label + "-particles",
		Size:  uint64(MaxParticles) * ParticleStride,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to allocate particle buffer: %w", err)
	}

	argsBuf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: s.label + "-args",
		Size:  DispatchArgsSize,
		Usage: wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		particleBuf.Release()
		return fmt.Errorf("failed to allocate argument buffer: %w", err)
	}

	paramsBuf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: s.label + "-params",
		Size:  ParamsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		argsBuf.Release()
		particleBuf.Release()
		return fmt.Errorf("failed to allocate params buffer: %w", err)
	}

	s.particleBuf = particleBuf
	s.argsBuf = argsBuf
	s.paramsBuf = paramsBuf
	return nil
}

func (s *System) createBindGroups() error {
	// Group 0 is identical for both kernels: params + particle buffer.
	particleEntries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: s.paramsBuf, Size: wgpu.WholeSize},
		{Binding: 1, Buffer: s.particleBuf, Size: wgpu.WholeSize},
	}

	var err error
	s.spawnParticlesBG, err = s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  s.spawnPipeline.GetBindGroupLayout(0),
		Entries: particleEntries,
	})
	if err != nil {
		return fmt.Errorf("failed to create spawn bind group 0: %w", err)
	}
	s.updateParticlesBG, err = s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  s.updatePipeline.GetBindGroupLayout(0),
		Entries: particleEntries,
	})
	if err != nil {
		return fmt.Errorf("failed to create update bind group 0: %w", err)
	}

	// Spawn group 1: mesh emitter buffers, or placeholders when absent so
	// the bind group stays valid.
	vertexBuf, triangleBuf := s.meshBuffers()
	s.spawnMeshBG, err = s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: s.spawnPipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: vertexBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: triangleBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create spawn mesh bind group: %w", err)
	}

	// Update group 1: the two baked lookup ramps.
	lifeRamp, velocityRamp, err := s.rampViews()
	if err != nil {
		return err
	}
	s.updateRampsBG, err = s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: s.updatePipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: lifeRamp, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: velocityRamp, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create update ramp bind group: %w", err)
	}
	return nil
}

func (s *System) meshBuffers() (*wgpu.Buffer, *wgpu.Buffer) {
	if s.cfg.Mesh != nil {
		return s.cfg.Mesh.VertexBuf, s.cfg.Mesh.TriangleBuf
	}
	if s.dummyVertexBuf == nil {
		s.dummyVertexBuf = s.mustCreateBuffer(s.label+"-dummy-vertices", meshVertexStride, wgpu.BufferUsageStorage)
		s.dummyTriangleBuf = s.mustCreateBuffer(s.label+"-dummy-triangles", 16, wgpu.BufferUsageStorage)
	}
	return s.dummyVertexBuf, s.dummyTriangleBuf
}

func (s *System) rampViews() (*wgpu.TextureView, *wgpu.TextureView, error) {
	life := s.cfg.LifeRamp
	if life == nil {
		baked, err := Gradient(nil).Bake(s.device)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to bake default life ramp: %w", err)
		}
		s.ownedRamps = append(s.ownedRamps, baked)
		life = baked
	}
	velocity := s.cfg.VelocityRamp
	if velocity == nil {
		baked, err := Gradient(nil).Bake(s.device)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to bake default velocity ramp: %w", err)
		}
		s.ownedRamps = append(s.ownedRamps, baked)
		velocity = baked
	}
	return life.View, velocity.View, nil
}

func (s *System) mustCreateBuffer(label string, size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		panic(err)
	}
	return buf
}

// syncArgs uploads the initial dispatch arguments during Init.
func (s *System) syncArgs() {
	s.argsGroups = DispatchGroups(s.cfg.EmissionCount)
	s.argsUploaded = true
	s.queue.WriteBuffer(s.argsBuf, 0, EncodeDispatchArgs(s.argsGroups))
}

// gpuSubmit pushes one staged frame: uniform upload, optional argument
// refresh, then the two indirect dispatches in a single encoder.
func (s *System) gpuSubmit(params []byte, groups uint32, refreshArgs bool) {
	s.queue.WriteBuffer(s.paramsBuf, 0, params)
	if refreshArgs {
		s.queue.WriteBuffer(s.argsBuf, 0, EncodeDispatchArgs(groups))
	}

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(s.spawnPipeline)
	pass.SetBindGroup(0, s.spawnParticlesBG, nil)
	pass.SetBindGroup(1, s.spawnMeshBG, nil)
	pass.DispatchWorkgroupsIndirect(s.argsBuf, 0)

	pass.SetPipeline(s.updatePipeline)
	pass.SetBindGroup(0, s.updateParticlesBG, nil)
	pass.SetBindGroup(1, s.updateRampsBG, nil)
	pass.DispatchWorkgroupsIndirect(s.argsBuf, 0)
	pass.End()

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	s.queue.Submit(cmdBuf)
}

func (s *System) releasePipelines() {
	if s.spawnPipeline != nil {
		s.spawnPipeline.Release()
		s.spawnPipeline = nil
	}
	if s.updatePipeline != nil {
		s.updatePipeline.Release()
		s.updatePipeline = nil
	}
}

func (s *System) releaseBuffers() {
	for _, buf := range []*wgpu.Buffer{s.particleBuf, s.argsBuf, s.paramsBuf, s.dummyVertexBuf, s.dummyTriangleBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	s.particleBuf = nil
	s.argsBuf = nil
	s.paramsBuf = nil
	s.dummyVertexBuf = nil
	s.dummyTriangleBuf = nil
}

func (s *System) releaseBindGroups() {
	for _, bg := range []*wgpu.BindGroup{s.spawnParticlesBG, s.spawnMeshBG, s.updateParticlesBG, s.updateRampsBG} {
		if bg != nil {
			bg.Release()
		}
	}
	s.spawnParticlesBG = nil
	s.spawnMeshBG = nil
	s.updateParticlesBG = nil
	s.updateRampsBG = nil
}
