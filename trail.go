package tracerfx

// SmokeTrail is the residual smoke left along a shot's path. It does not
// move; its fade front advances along the segment at the velocity of the
// tracer it follows while the whole band thins out over its lifetime.
type SmokeTrail struct {
	particleState
	velocity float32
}

func NewSmokeTrail(params SpawnParams) (*SmokeTrail, error) {
	if err := validateVelocity(params.Velocity); err != nil {
		return nil, err
	}
	st, err := newParticleState(params)
	if err != nil {
		return nil, err
	}
	return &SmokeTrail{particleState: st, velocity: params.Velocity}, nil
}

func (s *SmokeTrail) Kind() ParticleKind { return KindSmokeTrail }

func (s *SmokeTrail) Geometry() Quad { return trailQuad }

func (s *SmokeTrail) Velocity() float32 { return s.velocity }

func (s *SmokeTrail) Appearance() AppearanceParams {
	return ComputeAppearance(s.elapsed, s.lifetime, s.scale, s.velocity)
}

func (s *SmokeTrail) update(dt float32) {
	s.advance(dt)
}

// TimedTrail is a static streak spanning its whole segment that only fades
// with time. SpawnParams.Velocity is ignored.
type TimedTrail struct {
	particleState
}

func NewTimedTrail(params SpawnParams) (*TimedTrail, error) {
	st, err := newParticleState(params)
	if err != nil {
		return nil, err
	}
	return &TimedTrail{particleState: st}, nil
}

func (s *TimedTrail) Kind() ParticleKind { return KindTimedTrail }

func (s *TimedTrail) Geometry() Quad { return trailQuad }

func (s *TimedTrail) Appearance() AppearanceParams {
	return ComputeAppearance(s.elapsed, s.lifetime, s.scale, 0)
}

func (s *TimedTrail) update(dt float32) {
	s.advance(dt)
}
