package tracerfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderList_RegisterDeregister(t *testing.T) {
	list := NewRenderList()
	tr, err := NewTracer(SpawnParams{End: mgl32.Vec3{1, 0, 0}, Lifetime: 1})
	require.NoError(t, err)

	require.NoError(t, list.RegisterRenderable(tr))
	assert.ErrorIs(t, list.RegisterRenderable(tr), ErrDuplicateParticle)
	assert.Equal(t, 1, list.Len())

	require.NoError(t, list.DeregisterRenderable(tr))
	assert.ErrorIs(t, list.DeregisterRenderable(tr), ErrUnknownRenderable)
	assert.Equal(t, 0, list.Len())
}

func TestRenderList_Collect(t *testing.T) {
	list := NewRenderList()
	mgr := NewParticleManager(list, nil)

	smoke, err := NewSmokeTrail(SpawnParams{End: mgl32.Vec3{0, 10, 0}, Lifetime: 1, Velocity: 20})
	require.NoError(t, err)
	tr, err := NewTracer(SpawnParams{Start: mgl32.Vec3{5, 0, 0}, End: mgl32.Vec3{5, 10, 0}, Lifetime: 1})
	require.NoError(t, err)
	require.NoError(t, mgr.Add(smoke))
	require.NoError(t, mgr.Add(tr))
	require.NoError(t, mgr.Update(0.01))

	instances := list.Collect(mgl32.Vec3{0, 0, 10})
	require.Len(t, instances, 2)

	s := instances[0]
	assert.Equal(t, smoke.Id(), s.Id)
	assert.Equal(t, KindSmokeTrail, s.Kind)
	assert.Equal(t, float32(10), s.LengthScale)
	assert.InDelta(t, 0.01, s.Params.TimeStep, 1e-6)
	assert.InDelta(t, 0.02, s.Params.LengthStep, 1e-6)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, s.Orientation.Col(0))

	corners := s.Corners()
	assertVec3(t, mgl32.Vec3{-0.05, 0, 0}, corners[0])
	assertVec3(t, mgl32.Vec3{0.05, 0, 0}, corners[1])
	assertVec3(t, mgl32.Vec3{0.05, 10, 0}, corners[2])
	assertVec3(t, mgl32.Vec3{-0.05, 10, 0}, corners[3])

	b := instances[1]
	assert.Equal(t, KindTracer, b.Kind)
	assert.Equal(t, float32(1), b.LengthScale)
	assertVec3(t, mgl32.Vec3{5, 2, 0}, b.Position)
	// Top right corner: half width along right, full length along the travel axis.
	expected := b.Position.Add(b.Orientation.Col(0).Mul(0.1)).Add(mgl32.Vec3{0, 2, 0})
	assertVec3(t, expected, b.Corners()[2])
}

func TestRenderList_SkipsInstancesPastLifetime(t *testing.T) {
	list := NewRenderList()
	trail, err := NewTimedTrail(SpawnParams{End: mgl32.Vec3{1, 0, 0}, Lifetime: 0.5})
	require.NoError(t, err)
	require.NoError(t, list.RegisterRenderable(trail))

	trail.update(0.5)
	require.Len(t, list.Collect(mgl32.Vec3{0, 0, 5}), 1)

	trail.update(0.25)
	assert.Empty(t, list.Collect(mgl32.Vec3{0, 0, 5}))
}

func TestRenderList_AppendInstancesReusesStorage(t *testing.T) {
	list := NewRenderList()
	for i := 0; i < 3; i++ {
		tr, err := NewTracer(SpawnParams{End: mgl32.Vec3{0, 0, -1}, Lifetime: 1})
		require.NoError(t, err)
		require.NoError(t, list.RegisterRenderable(tr))
	}

	buf := make([]BillboardInstance, 0, 8)
	out := list.AppendInstances(buf, mgl32.Vec3{0, 5, 0})
	assert.Len(t, out, 3)
	assert.Same(t, &buf[:1][0], &out[0])
}
