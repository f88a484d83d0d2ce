package tracerfx

import (
	"slices"

	"github.com/pkg/errors"
)

// ParticleManager owns the live particle set. It is the only component that
// advances particles and the only one that retires them. It is not safe for
// concurrent use; drive it from the frame thread.
type ParticleManager struct {
	scene  Scene
	logger Logger

	live  map[ParticleId]Particle
	order []ParticleId // insertion order, keeps iteration deterministic

	added   uint64
	retired uint64
	frames  uint64
}

type ManagerStats struct {
	Live    int
	Added   uint64
	Retired uint64
	Frames  uint64
}

// NewParticleManager creates a manager registering renderables with scene.
// Either argument may be nil.
func NewParticleManager(scene Scene, logger Logger) *ParticleManager {
	if scene == nil {
		scene = nopScene{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &ParticleManager{
		scene:  scene,
		logger: logger,
		live:   make(map[ParticleId]Particle),
	}
}

// Add takes ownership of p and registers it with the scene.
func (m *ParticleManager) Add(p Particle) error {
	if isNilParticle(p) {
		return ErrNilParticle
	}
	st := p.state()
	switch {
	case st.disposed:
		return errors.Wrapf(ErrParticleDisposed, "particle %s", st.id)
	case st.owner == m:
		return errors.Wrapf(ErrDuplicateParticle, "particle %s", st.id)
	case st.owner != nil:
		return errors.Wrapf(ErrParticleOwned, "particle %s", st.id)
	}
	if _, ok := m.live[st.id]; ok {
		return errors.Wrapf(ErrDuplicateParticle, "particle %s", st.id)
	}

	if err := m.scene.RegisterRenderable(p); err != nil {
		return errors.Wrapf(err, "register %s %s", p.Kind(), st.id)
	}

	st.owner = m
	m.live[st.id] = p
	m.order = append(m.order, st.id)
	m.added++
	m.logger.Tracef("particle %s (%s) added, lifetime %.3fs", st.id, p.Kind(), st.lifetime)
	return nil
}

// Update advances every live particle by dt seconds and retires those that
// reached their lifetime. Every particle live at the start of the call is
// updated exactly once; retirement happens after the update pass.
func (m *ParticleManager) Update(dt float32) error {
	if !isFinite(dt) || dt < 0 {
		return errors.Wrapf(ErrInvalidDelta, "dt %v", dt)
	}
	m.frames++

	var expired []Particle
	for _, id := range m.order {
		p := m.live[id]
		p.update(dt)
		if p.Expired() {
			expired = append(expired, p)
		}
	}

	return m.sweep(expired)
}

// Clear retires every live particle, e.g. on scene teardown.
func (m *ParticleManager) Clear() error {
	all := make([]Particle, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.live[id])
	}
	return m.sweep(all)
}

// Remove retires the live particle id ahead of its lifetime.
func (m *ParticleManager) Remove(id ParticleId) error {
	p, ok := m.live[id]
	if !ok {
		return errors.Wrapf(ErrUnknownParticle, "particle %s", id)
	}
	return m.sweep([]Particle{p})
}

func (m *ParticleManager) sweep(retiring []Particle) error {
	if len(retiring) == 0 {
		return nil
	}

	var firstErr error
	for _, p := range retiring {
		if err := m.retire(p); err != nil {
			m.logger.Errorf("retiring particle %s: %v", p.Id(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	m.order = slices.DeleteFunc(m.order, func(id ParticleId) bool {
		_, ok := m.live[id]
		return !ok
	})
	return firstErr
}

// retire always removes p from the live set, even if releasing or
// deregistering fails.
func (m *ParticleManager) retire(p Particle) error {
	st := p.state()
	delete(m.live, st.id)
	st.owner = nil
	m.retired++

	disposeErr := p.dispose()
	sceneErr := m.scene.DeregisterRenderable(p)
	m.logger.Tracef("particle %s (%s) retired after %.3fs", st.id, p.Kind(), st.elapsed)

	if disposeErr != nil {
		return disposeErr
	}
	if sceneErr != nil {
		return errors.Wrapf(sceneErr, "deregister %s", st.id)
	}
	return nil
}

func (m *ParticleManager) Len() int { return len(m.live) }

// Live returns the live particles in insertion order.
func (m *ParticleManager) Live() []Particle {
	out := make([]Particle, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.live[id])
	}
	return out
}

func (m *ParticleManager) Get(id ParticleId) (Particle, bool) {
	p, ok := m.live[id]
	return p, ok
}

func (m *ParticleManager) Stats() ManagerStats {
	return ManagerStats{
		Live:    len(m.live),
		Added:   m.added,
		Retired: m.retired,
		Frames:  m.frames,
	}
}
