package tracerfx

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newParticlesApp(t *testing.T, mod ParticlesModule) (*App, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	app := NewAppBuilder().
		UseModule(
			LoggingModule{Prefix: "test"},
			TimeModule{Now: clock.Now},
			mod,
		).
		Build()
	return app, clock
}

func TestTimeModule(t *testing.T) {
	clock := &fakeClock{now: time.Unix(50, 0)}
	app := NewAppBuilder().UseModule(TimeModule{Now: clock.Now}).Build()
	tm, ok := Resource[Time](app)
	require.True(t, ok)

	app.Step()
	assert.Zero(t, tm.Dt)

	clock.Advance(16 * time.Millisecond)
	app.Step()
	assert.Equal(t, 16*time.Millisecond, tm.Dt)
	assert.InDelta(t, 0.016, tm.Seconds(), 1e-6)

	// A clock going backwards yields an empty frame rather than a negative dt.
	clock.Advance(-time.Second)
	app.Step()
	assert.Zero(t, tm.Dt)
}

func TestParticlesModule_InstallsResources(t *testing.T) {
	app := NewAppBuilder().UseModule(NewParticlesModule()).Build()

	for _, ok := range []bool{
		has[ParticleManager](app),
		has[RenderList](app),
		has[BillboardBatch](app),
		has[Spawner](app),
		has[Camera](app),
		has[Time](app),
	} {
		assert.True(t, ok)
	}
}

func has[T any](app *App) bool {
	_, ok := Resource[T](app)
	return ok
}

func TestParticlesModule_ShotLifecycle(t *testing.T) {
	app, clock := newParticlesApp(t, NewParticlesModule())
	mgr, _ := Resource[ParticleManager](app)
	list, _ := Resource[RenderList](app)
	batch, _ := Resource[BillboardBatch](app)
	sp, _ := Resource[Spawner](app)

	sp.Fire(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -10})
	assert.Equal(t, 1, sp.Pending())

	app.Step()
	assert.Zero(t, sp.Pending())
	require.Equal(t, 2, mgr.Len())
	assert.Equal(t, 2, list.Len())
	assert.Len(t, batch.Instances, 2)

	// Tracer lifetime is its flight time: 10 units at 200 u/s.
	clock.Advance(60 * time.Millisecond)
	app.Step()
	require.Equal(t, 1, mgr.Len())
	smoke := mgr.Live()[0]
	assert.Equal(t, KindSmokeTrail, smoke.Kind())
	assert.InDelta(t, 0.06, smoke.Elapsed(), 1e-6)
	require.Len(t, batch.Instances, 1)
	assert.Equal(t, smoke.Id(), batch.Instances[0].Id)

	clock.Advance(time.Second)
	app.Step()
	assert.InDelta(t, 0.16, smoke.Elapsed(), 1e-6, "dt capped at MaxStep")

	for i := 0; i < 4; i++ {
		clock.Advance(100 * time.Millisecond)
		app.Step()
	}
	assert.Equal(t, 0, mgr.Len())
	assert.Equal(t, 0, list.Len())
	assert.Empty(t, batch.Instances)
	assert.Equal(t, uint64(2), mgr.Stats().Retired)
}

func TestParticlesModule_DropsDegenerateShot(t *testing.T) {
	app, _ := newParticlesApp(t, NewParticlesModule())
	mgr, _ := Resource[ParticleManager](app)
	sp, _ := Resource[Spawner](app)

	sp.Fire(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1})
	sp.Fire(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})
	app.Step()

	assert.Equal(t, 2, mgr.Len())
	assert.Zero(t, sp.Pending())
}

func TestParticlesModule_CollectFacesCamera(t *testing.T) {
	app, _ := newParticlesApp(t, ParticlesModule{Shot: ShotConfig{NoSmoke: true}})
	cam, _ := Resource[Camera](app)
	batch, _ := Resource[BillboardBatch](app)
	sp, _ := Resource[Spawner](app)

	cam.Position = mgl32.Vec3{0, 0, 10}
	sp.Fire(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 50, 0})
	app.Step()

	require.Len(t, batch.Instances, 1)
	assert.Equal(t, cam.Position, batch.CameraPosition)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, batch.Instances[0].Orientation.Col(2))
}

func TestSpawnShot(t *testing.T) {
	mgr := NewParticleManager(nil, nil)

	tr, smoke, err := SpawnShot(mgr, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{100, 0, 0}, ShotConfig{Velocity: 400, SmokeLifetime: 2})
	require.NoError(t, err)
	require.NotNil(t, smoke)

	assert.Equal(t, float32(400), tr.Velocity())
	assert.InDelta(t, 0.25, tr.Lifetime(), 1e-6)
	assert.Equal(t, tr.Velocity(), smoke.Velocity())
	assert.Equal(t, float32(2), smoke.Lifetime())
	assert.Equal(t, tr.Scale(), smoke.Scale())
	assert.Equal(t, tr.Direction(), smoke.Direction())
	assert.Equal(t, 2, mgr.Len())

	tr, smoke, err = SpawnShot(mgr, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, ShotConfig{TracerLifetime: 3, NoSmoke: true})
	require.NoError(t, err)
	assert.Nil(t, smoke)
	assert.Equal(t, float32(3), tr.Lifetime())
	assert.Equal(t, DefaultTracerVelocity, tr.Velocity())

	_, _, err = SpawnShot(mgr, mgl32.Vec3{2, 2, 2}, mgl32.Vec3{2, 2, 2}, ShotConfig{})
	assert.ErrorIs(t, err, ErrDegenerateSegment)
	assert.Equal(t, 3, mgr.Len())
}

// smokeRejectingScene refuses smoke trails and records what it holds.
type smokeRejectingScene struct {
	held map[ParticleId]ParticleKind
}

func (s *smokeRejectingScene) RegisterRenderable(r Renderable) error {
	if r.Kind() == KindSmokeTrail {
		return errors.New("no smoke material")
	}
	s.held[r.Id()] = r.Kind()
	return nil
}

func (s *smokeRejectingScene) DeregisterRenderable(r Renderable) error {
	delete(s.held, r.Id())
	return nil
}

func TestSpawnShot_RollsBackTracerWhenSmokeFails(t *testing.T) {
	scene := &smokeRejectingScene{held: map[ParticleId]ParticleKind{}}
	mgr := NewParticleManager(scene, nil)

	tr, smoke, err := SpawnShot(mgr, mgl32.Vec3{}, mgl32.Vec3{0, 0, -10}, ShotConfig{})
	require.Error(t, err)
	assert.Nil(t, tr)
	assert.Nil(t, smoke)
	assert.Zero(t, mgr.Len())
	assert.Empty(t, scene.held)

	tr, _, err = SpawnShot(mgr, mgl32.Vec3{}, mgl32.Vec3{0, 0, -10}, ShotConfig{NoSmoke: true})
	require.NoError(t, err)
	assert.Equal(t, map[ParticleId]ParticleKind{tr.Id(): KindTracer}, scene.held)
}
