package tracerfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AppearanceParams is the per-frame contract with the rendering backend.
// Backends interpret these values (masks, fades, blending) but never derive
// them on their own.
type AppearanceParams struct {
	TimeStep   float32 // elapsed / lifetime, in [0,1] while live
	InvScale   float32 // 1 / scale
	LengthStep float32 // how far the fade front has moved along the trail, in local units
}

// ComputeAppearance maps a particle's timing and size to shading parameters.
// lifetime > 0 and scale != 0 are guaranteed by particle construction.
// Pass velocity 0 for variants without a travelling fade front.
func ComputeAppearance(elapsed, lifetime, scale, velocity float32) AppearanceParams {
	return AppearanceParams{
		TimeStep:   elapsed / lifetime,
		InvScale:   1 / scale,
		LengthStep: (velocity / scale) * elapsed,
	}
}

// Clamped returns the params with TimeStep limited to [0,1] and LengthStep to
// >= 0. The frame that retires a particle can push TimeStep past 1.
func (a AppearanceParams) Clamped() AppearanceParams {
	a.TimeStep = mgl32.Clamp(a.TimeStep, 0, 1)
	if a.LengthStep < 0 {
		a.LengthStep = 0
	}
	return a
}

var (
	TracerColor = mgl32.Vec3{1.0, 0.9, 0.1}.Mul(5.0)
	SmokeColor  = mgl32.Vec3{0.8, 0.8, 0.8}
)

// Mask opacities: each kind's mask is scaled by its opacity into final alpha.
const (
	SmokeOpacity      = 0.25
	TimedTrailOpacity = 0.15
)

// TracerMask is the streak mask over quad UVs: soft at both ends, peaked
// along the centre line.
func TracerMask(u, v float32) float32 {
	lower := smoothstep(0.0, 0.75, v)
	upper := smoothstep(1.0, 0.75, v)
	horizontal := 1.0 - mgl32.Abs(u*2.0-1.0)
	return lower * upper * horizontal
}

// SmokeMask is the smoke trail mask: a centre-weighted band that thins with
// TimeStep. Only v <= LengthStep is drawn, so the smoke grows from the muzzle
// behind the fade front.
func SmokeMask(params AppearanceParams, u, v float32) float32 {
	p := params.Clamped()
	band := 1.0 - mgl32.Abs(u*2.0-1.0)
	horizontal := band*band - p.TimeStep
	front := step(1.0, 1.0-v+p.LengthStep)
	return max(horizontal*front, 0)
}

// TimedTrailMask fades the whole trail with TimeStep. The far end (v near 1)
// lingers longest.
func TimedTrailMask(params AppearanceParams, u, v float32) float32 {
	p := params.Clamped()
	band := 1.0 - mgl32.Abs(u*2.0-1.0)
	fade := 1.0 - 2*p.TimeStep + p.TimeStep*v
	fade *= 1.0 - p.TimeStep
	return max(band*band*fade, 0)
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := mgl32.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

func step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

func isFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
