package tracerfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Quad describes the static billboard mesh a particle is drawn with. The
// quad lies in the local XY plane, spans [-HalfWidth, HalfWidth] on X and
// [0, Length] on Y, and faces +Z. Stretch quads have their Y axis scaled by
// the particle's scale so they cover the whole segment.
type Quad struct {
	HalfWidth float32
	Length    float32
	Stretch   bool
}

var (
	tracerQuad = Quad{HalfWidth: 0.1, Length: 2.0}
	trailQuad  = Quad{HalfWidth: 0.05, Length: 1.0, Stretch: true}
)

// QuadUVs matches the vertex order of Quad.Vertices.
var QuadUVs = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// InterpolateUV blends QuadUVs bilinearly. s runs from vertex 0 towards
// vertex 1 and t from vertex 0 towards vertex 3, both in [0,1].
func InterpolateUV(s, t float32) mgl32.Vec2 {
	bottom := QuadUVs[0].Mul(1 - s).Add(QuadUVs[1].Mul(s))
	top := QuadUVs[3].Mul(1 - s).Add(QuadUVs[2].Mul(s))
	return bottom.Mul(1 - t).Add(top.Mul(t))
}

// Vertices returns the local corner positions, counter-clockwise from the
// bottom left.
func (q Quad) Vertices() [4]mgl32.Vec3 {
	return [4]mgl32.Vec3{
		{-q.HalfWidth, 0, 0},
		{q.HalfWidth, 0, 0},
		{q.HalfWidth, q.Length, 0},
		{-q.HalfWidth, q.Length, 0},
	}
}

// LengthScale is the factor applied to the local Y axis for a particle of the
// given scale.
func (q Quad) LengthScale(scale float32) float32 {
	if q.Stretch {
		return scale
	}
	return 1
}
