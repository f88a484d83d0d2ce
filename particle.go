package tracerfx

import (
	"math"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type ParticleId string

func newParticleId() ParticleId {
	return ParticleId(uuid.NewString())
}

type ParticleKind int

const (
	KindTracer ParticleKind = iota
	KindSmokeTrail
	KindTimedTrail
)

func (k ParticleKind) String() string {
	switch k {
	case KindTracer:
		return "tracer"
	case KindSmokeTrail:
		return "smoke-trail"
	case KindTimedTrail:
		return "timed-trail"
	default:
		return "unknown"
	}
}

// Renderable is the read-only view a rendering backend pulls each frame.
type Renderable interface {
	Id() ParticleId
	Kind() ParticleKind
	Position() mgl32.Vec3
	Direction() mgl32.Vec3
	Scale() float32
	Lifetime() float32
	Elapsed() float32
	Appearance() AppearanceParams
	Geometry() Quad
}

// Particle is a Renderable whose lifecycle is driven by a ParticleManager.
// The lifecycle methods are unexported: only the manager advances or
// disposes particles.
type Particle interface {
	Renderable
	Expired() bool
	Disposed() bool
	Attach(r Releaser)

	update(dt float32)
	dispose() error
	state() *particleState
}

// Releaser is a backend resource (buffer, material, texture) owned by a
// particle and freed when the particle retires.
type Releaser interface {
	Release()
}

// ReleaserFunc adapts a function to Releaser.
type ReleaserFunc func()

func (f ReleaserFunc) Release() { f() }

// SpawnParams are the only inputs a particle is created from.
type SpawnParams struct {
	Start    mgl32.Vec3
	End      mgl32.Vec3
	Lifetime float32 // seconds
	Velocity float32 // units per second; meaning depends on the variant
}

// particleState is the state every variant shares.
type particleState struct {
	id        ParticleId
	position  mgl32.Vec3
	direction mgl32.Vec3
	scale     float32
	lifetime  float32
	elapsed   float32

	owner     *ParticleManager
	disposed  bool
	resources []Releaser
}

func newParticleState(params SpawnParams) (particleState, error) {
	if !isFinite(params.Lifetime) || params.Lifetime <= 0 {
		return particleState{}, errors.Wrapf(ErrInvalidLifetime, "lifetime %v", params.Lifetime)
	}

	segment := params.End.Sub(params.Start)
	scale := segmentLength(segment)
	if !isFinite(scale) || scale == 0 || !finiteVec(params.Start) {
		return particleState{}, errors.Wrapf(ErrDegenerateSegment, "start %v end %v", params.Start, params.End)
	}

	return particleState{
		id:        newParticleId(),
		position:  params.Start,
		direction: segment.Mul(1 / scale),
		scale:     scale,
		lifetime:  params.Lifetime,
	}, nil
}

// segmentLength sums the squares in float64; mgl32's Len overflows to +Inf
// for components beyond ~1.8e19.
func segmentLength(v mgl32.Vec3) float32 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	return float32(math.Sqrt(x*x + y*y + z*z))
}

// isNilParticle catches typed nil pointers, which pass a plain p == nil check.
func isNilParticle(p Particle) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func validateVelocity(v float32) error {
	if !isFinite(v) || v < 0 {
		return errors.Wrapf(ErrInvalidVelocity, "velocity %v", v)
	}
	return nil
}

func finiteVec(v mgl32.Vec3) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}

func (s *particleState) Id() ParticleId        { return s.id }
func (s *particleState) Position() mgl32.Vec3  { return s.position }
func (s *particleState) Direction() mgl32.Vec3 { return s.direction }
func (s *particleState) Scale() float32        { return s.scale }
func (s *particleState) Lifetime() float32     { return s.lifetime }
func (s *particleState) Elapsed() float32      { return s.elapsed }
func (s *particleState) Disposed() bool        { return s.disposed }

// Expired reports whether the particle has reached its lifetime.
func (s *particleState) Expired() bool {
	return s.elapsed >= s.lifetime
}

// Attach hands a backend resource to the particle. It is released when the
// particle retires, in reverse attach order.
func (s *particleState) Attach(r Releaser) {
	if r == nil {
		return
	}
	s.resources = append(s.resources, r)
}

func (s *particleState) state() *particleState { return s }

func (s *particleState) advance(dt float32) {
	s.elapsed += dt
}

// dispose releases attached resources once. With nothing attached it is a
// no-op apart from marking the particle retired.
func (s *particleState) dispose() error {
	if s.disposed {
		return errors.Wrapf(ErrAlreadyDisposed, "particle %s", s.id)
	}
	s.disposed = true
	for i := len(s.resources) - 1; i >= 0; i-- {
		s.resources[i].Release()
	}
	s.resources = nil
	return nil
}
