package tracerfx

import (
	"github.com/pkg/errors"
)

// Precondition violations. These are programmer errors: they are rejected at
// the call site and never folded into per-frame state.
var (
	ErrInvalidLifetime   = errors.New("particle lifetime must be finite and > 0")
	ErrDegenerateSegment = errors.New("particle segment is degenerate (start == end or non-finite)")
	ErrInvalidVelocity   = errors.New("particle velocity must be finite and >= 0")
	ErrInvalidDelta      = errors.New("frame delta must be finite and >= 0")

	ErrNilParticle       = errors.New("nil particle")
	ErrDuplicateParticle = errors.New("particle already added")
	ErrParticleOwned     = errors.New("particle is owned by another manager")
	ErrParticleDisposed  = errors.New("particle already retired")
	ErrAlreadyDisposed   = errors.New("particle disposed twice")
	ErrUnknownParticle   = errors.New("particle not live in this manager")

	ErrUnknownRenderable     = errors.New("renderable not registered")
	ErrDegenerateOrientation = errors.New("billboard orientation is degenerate")
)
