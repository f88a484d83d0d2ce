package tracerfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTracerVelocity is the muzzle velocity used when SpawnParams.Velocity
// is zero, in world units per second.
const DefaultTracerVelocity float32 = 200

// Tracer is the visible streak of a projectile. It flies from Start along
// the segment direction at a constant velocity until its lifetime runs out.
type Tracer struct {
	particleState
	velocity   float32
	start, end mgl32.Vec3
}

func NewTracer(params SpawnParams) (*Tracer, error) {
	if err := validateVelocity(params.Velocity); err != nil {
		return nil, err
	}
	st, err := newParticleState(params)
	if err != nil {
		return nil, err
	}

	velocity := params.Velocity
	if velocity == 0 {
		velocity = DefaultTracerVelocity
	}
	return &Tracer{
		particleState: st,
		velocity:      velocity,
		start:         params.Start,
		end:           params.End,
	}, nil
}

func (t *Tracer) Kind() ParticleKind { return KindTracer }

func (t *Tracer) Geometry() Quad { return tracerQuad }

func (t *Tracer) Velocity() float32 { return t.velocity }

// Appearance has no fade front; LengthStep stays 0.
func (t *Tracer) Appearance() AppearanceParams {
	return ComputeAppearance(t.elapsed, t.lifetime, t.scale, 0)
}

// TrailParams returns spawn parameters for a trail covering the tracer's
// segment with matching velocity.
func (t *Tracer) TrailParams(lifetime float32) SpawnParams {
	return SpawnParams{
		Start:    t.start,
		End:      t.end,
		Lifetime: lifetime,
		Velocity: t.velocity,
	}
}

func (t *Tracer) update(dt float32) {
	t.position = t.position.Add(t.direction.Mul(t.velocity * dt))
	t.advance(dt)
}
