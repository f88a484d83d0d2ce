package tracerfx

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// DefaultSmokeLifetime is how long a shot's smoke lingers when ShotConfig
// leaves it unset.
const DefaultSmokeLifetime float32 = 0.5

// ShotConfig sets how SpawnShot builds a tracer and its smoke trail. Zero
// values pick defaults: DefaultTracerVelocity, a tracer lifetime equal to the
// flight time over the segment, and DefaultSmokeLifetime.
type ShotConfig struct {
	Velocity       float32
	TracerLifetime float32
	SmokeLifetime  float32
	NoSmoke        bool
}

// SpawnShot creates a tracer flying from start to end plus a smoke trail
// along the same segment, and hands both to m. The smoke trail is nil when
// cfg.NoSmoke is set. On error no part of the shot stays live in m.
func SpawnShot(m *ParticleManager, start, end mgl32.Vec3, cfg ShotConfig) (*Tracer, *SmokeTrail, error) {
	distance := segmentLength(end.Sub(start))
	if distance == 0 || !isFinite(distance) {
		return nil, nil, errors.Wrapf(ErrDegenerateSegment, "shot from %v to %v", start, end)
	}

	velocity := cfg.Velocity
	if velocity == 0 {
		velocity = DefaultTracerVelocity
	}
	tracerLifetime := cfg.TracerLifetime
	if tracerLifetime == 0 && velocity > 0 {
		tracerLifetime = distance / velocity
	}
	smokeLifetime := cfg.SmokeLifetime
	if smokeLifetime == 0 {
		smokeLifetime = DefaultSmokeLifetime
	}

	tracer, err := NewTracer(SpawnParams{Start: start, End: end, Lifetime: tracerLifetime, Velocity: velocity})
	if err != nil {
		return nil, nil, err
	}
	var smoke *SmokeTrail
	if !cfg.NoSmoke {
		smoke, err = NewSmokeTrail(tracer.TrailParams(smokeLifetime))
		if err != nil {
			return nil, nil, err
		}
	}

	if err := m.Add(tracer); err != nil {
		return nil, nil, err
	}
	if smoke != nil {
		if err := m.Add(smoke); err != nil {
			// A shot is spawned whole or not at all.
			if rmErr := m.Remove(tracer.Id()); rmErr != nil {
				m.logger.Errorf("rolling back tracer %s: %v", tracer.Id(), rmErr)
			}
			return nil, nil, err
		}
	}
	return tracer, smoke, nil
}

// Camera is the viewer the billboards face. The app owns it; particles only
// ever see its position.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Fovy     float32 // radians
	Near     float32
	Far      float32
}

func NewCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 2, 20},
		Up:       mgl32.Vec3{0, 1, 0},
		Fovy:     mgl32.DegToRad(60),
		Near:     0.1,
		Far:      500,
	}
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.Fovy, aspect, c.Near, c.Far).Mul4(c.ViewMatrix())
}

// BillboardBatch holds the instances collected for the current frame.
type BillboardBatch struct {
	Instances      []BillboardInstance
	CameraPosition mgl32.Vec3
}

// Spawner queues shots fired during a frame; they are spawned in the Update
// stage.
type Spawner struct {
	config  ShotConfig
	pending [][2]mgl32.Vec3
}

func (s *Spawner) Fire(start, end mgl32.Vec3) {
	s.pending = append(s.pending, [2]mgl32.Vec3{start, end})
}

func (s *Spawner) Pending() int { return len(s.pending) }

type particleSettings struct {
	maxStep float32
}

// ParticlesModule installs a ParticleManager backed by a RenderList and the
// systems that drive it from the frame clock.
type ParticlesModule struct {
	// MaxStep caps the dt handed to the manager per frame, in seconds, so a
	// long stall does not retire everything at once. 0 disables the cap.
	MaxStep float32
	Shot    ShotConfig
}

func NewParticlesModule() ParticlesModule {
	return ParticlesModule{MaxStep: 0.1}
}

func (m ParticlesModule) Install(app *App) {
	logger := app.Logger().Named("particles")
	if !app.hasResource(reflect.TypeOf(Time{})) {
		TimeModule{}.Install(app)
	}
	if !app.hasResource(reflect.TypeOf(Camera{})) {
		app.addResources(NewCamera())
	}

	list := NewRenderList()
	app.addResources(
		NewParticleManager(list, logger),
		list,
		&BillboardBatch{},
		&Spawner{config: m.Shot},
		&particleSettings{maxStep: m.MaxStep},
	)

	app.UseSystem(System(shotSpawnSystem).InStage(Update))
	app.UseSystem(System(particleUpdateSystem).InStage(PostUpdate))
	app.UseSystem(System(billboardCollectSystem).InStage(PreRender))
}

func shotSpawnSystem(sp *Spawner, mgr *ParticleManager) {
	for _, shot := range sp.pending {
		if _, _, err := SpawnShot(mgr, shot[0], shot[1], sp.config); err != nil {
			mgr.logger.Warnf("dropping shot %v -> %v: %v", shot[0], shot[1], err)
		}
	}
	sp.pending = sp.pending[:0]
}

func particleUpdateSystem(t *Time, mgr *ParticleManager, settings *particleSettings) {
	dt := t.Seconds()
	if settings.maxStep > 0 && dt > settings.maxStep {
		dt = settings.maxStep
	}
	if err := mgr.Update(dt); err != nil {
		mgr.logger.Errorf("particle update: %v", err)
	}
}

func billboardCollectSystem(cam *Camera, list *RenderList, batch *BillboardBatch) {
	batch.CameraPosition = cam.Position
	batch.Instances = list.AppendInstances(batch.Instances[:0], cam.Position)
}
