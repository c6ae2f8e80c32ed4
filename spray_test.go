package spray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testSystem builds a System with the GPU submission path stubbed out, so
// the orchestration sequence can be exercised without a live adapter.
func testSystem(cfg Config) (*System, *[]submittedFrame) {
	s := NewSystem(nil, cfg)
	frames := &[]submittedFrame{}
	s.submit = func(params []byte, groups uint32, refreshArgs bool) {
		*frames = append(*frames, submittedFrame{params, groups, refreshArgs})
	}
	s.Velocity = TransformDelta{}
	return s, frames
}

type submittedFrame struct {
	params  []byte
	groups  uint32
	refresh bool
}

func TestPrewarm_RunsExactlyConfiguredCycles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PrewarmFrames = 10

	s, frames := testSystem(cfg)
	s.prewarm()

	assert.Len(t, *frames, 10)
	assert.Equal(t, uint32(10), s.frame.Frame, "each prewarm cycle is a full staged tick")
}

func TestPrewarm_ZeroIsNoop(t *testing.T) {
	s, frames := testSystem(DefaultConfig())
	s.prewarm()
	assert.Empty(t, *frames)
}

func TestStep_RefreshesArgsOnlyWhenEmissionChanges(t *testing.T) {
	cfg := DefaultConfig()
	s, frames := testSystem(cfg)
	s.state = stateReady

	s.Step(1.0 / 60.0)
	s.Step(1.0 / 60.0)

	cfg.EmissionCount = 400000
	s.SetConfig(cfg)
	s.Step(1.0 / 60.0)
	s.Step(1.0 / 60.0)

	got := *frames
	assert.Len(t, got, 4)
	assert.True(t, got[0].refresh, "first tick must upload args")
	assert.False(t, got[1].refresh, "steady state keeps args")
	assert.True(t, got[2].refresh, "emission change recomputes args")
	assert.False(t, got[3].refresh)

	assert.Equal(t, uint32(16), got[0].groups)
	assert.Equal(t, DispatchGroups(400000), got[2].groups)
}

func TestStep_StagesFullParamBlock(t *testing.T) {
	s, frames := testSystem(DefaultConfig())
	s.state = stateReady
	s.Step(1.0 / 60.0)
	assert.Len(t, (*frames)[0].params, ParamsSize)
}

func TestStep_BeforeInitIsRejected(t *testing.T) {
	s, frames := testSystem(DefaultConfig())
	s.Step(1.0 / 60.0)
	assert.Empty(t, *frames, "uninitialized system must not dispatch")
}

func TestStep_AfterReleaseIsRejected(t *testing.T) {
	s, frames := testSystem(DefaultConfig())
	s.state = stateReady
	s.Step(1.0 / 60.0)

	s.Release()
	s.Step(1.0 / 60.0)
	assert.Len(t, *frames, 1, "release must stop further dispatches")
}

func TestRelease_WithoutMeshEmitter(t *testing.T) {
	s, _ := testSystem(DefaultConfig())
	s.state = stateReady

	// No mesh emitter was ever bound; release must not touch mesh
	// resources or crash on their absence.
	s.Release()
	assert.Equal(t, stateReleased, s.state)
}

func TestRelease_TwiceIsNoop(t *testing.T) {
	s, _ := testSystem(DefaultConfig())
	s.state = stateReady
	s.Release()
	s.Release()
	assert.Equal(t, stateReleased, s.state)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, [2]float32{0.5, 0.5}, cfg.MassRange)
	assert.Equal(t, [2]float32{0.95, 0.95}, cfg.MomentumRange)
	assert.Equal(t, [2]float32{0.5, 1.0}, cfg.LifespanRange)
	assert.Equal(t, uint32(65000), cfg.EmissionCount)
	assert.Equal(t, 0, cfg.PrewarmFrames)
	assert.Equal(t, ShapePoint, cfg.Shape)
	assert.Equal(t, VelocityParentBody, cfg.VelocityMode)
	assert.Nil(t, cfg.Mesh)
}
