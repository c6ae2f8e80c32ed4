package spray

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BodyQuery abstracts the parent scene object's physics lookup. The second
// return is false when the parent exists but carries no physics body.
type BodyQuery interface {
	Velocity() (mgl32.Vec3, bool)
}

// VelocitySource supplies the emitter velocity inherited by newborn
// particles. The core depends only on this capability, never on a concrete
// scene-graph type.
type VelocitySource interface {
	// EmitterVelocity resolves this tick's emitter velocity. current and
	// previous are the emitter positions of this and the prior tick; prev
	// is the velocity retained from the prior tick. A source that cannot
	// resolve a value this tick returns prev unchanged.
	EmitterVelocity(current, previous, prev mgl32.Vec3) mgl32.Vec3
}

// Fixed is a VelocitySource that always reports the same vector.
type Fixed mgl32.Vec3

func (f Fixed) EmitterVelocity(_, _, _ mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3(f)
}

// ParentBody resolves the emitter velocity from the parent's physics body.
// A nil query means no parent at all: the velocity is the zero vector, not
// the previous value. A parent without a body keeps the previous direction.
type ParentBody struct {
	Query BodyQuery
}

func (p ParentBody) EmitterVelocity(_, _, prev mgl32.Vec3) mgl32.Vec3 {
	if p.Query == nil {
		return mgl32.Vec3{}
	}
	if v, ok := p.Query.Velocity(); ok {
		return v
	}
	// Parent present, body missing: keep the prior direction. This is
	// deliberately not "zero velocity".
	return prev
}

// TransformDelta derives the emitter velocity from the emitter transform's
// frame-to-frame displacement.
type TransformDelta struct{}

func (TransformDelta) EmitterVelocity(current, previous, _ mgl32.Vec3) mgl32.Vec3 {
	return current.Sub(previous)
}
