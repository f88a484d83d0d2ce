// Package debugdraw is a CPU reference backend: it rasterizes billboard
// instances into an image so effects can be inspected without a GPU.
package debugdraw

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/gekko3d/tracerfx"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Rasterize draws each instance over dst with its kind's mask evaluated per
// pixel: tracers use TracerMask faded by TimeStep, smoke trails SmokeMask
// (including the fade front) and timed trails TimedTrailMask. Quads with a
// corner behind the camera are skipped.
func Rasterize(dst *image.RGBA, instances []tracerfx.BillboardInstance, viewProj mgl32.Mat4) {
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return
	}

	var r vector.Rasterizer
	coverage := image.NewAlpha(image.Rect(0, 0, w, h))
	for _, inst := range instances {
		var pts [4]mgl32.Vec2
		visible := true
		for i, c := range inst.Corners() {
			p, ok := project(c, viewProj, w, h)
			if !ok {
				visible = false
				break
			}
			pts[i] = p
		}
		if !visible {
			continue
		}
		toQuad, ok := screenToQuad(pts)
		if !ok {
			continue
		}

		area := pixelBounds(pts, w, h).Intersect(coverage.Rect)
		if area.Empty() {
			continue
		}

		// The rasterizer's origin lands on area.Min.
		origin := mgl32.Vec2{float32(area.Min.X), float32(area.Min.Y)}
		r.Reset(area.Dx(), area.Dy())
		start := pts[0].Sub(origin)
		r.MoveTo(start.X(), start.Y())
		for _, p := range pts[1:] {
			p = p.Sub(origin)
			r.LineTo(p.X(), p.Y())
		}
		r.ClosePath()
		r.Draw(coverage, area, image.Opaque, image.Point{})

		shade(coverage, area, inst, toQuad)
		fill := image.NewUniform(baseColor(inst.Kind))
		draw.DrawMask(dst, area.Add(bounds.Min), fill, image.Point{}, coverage, area.Min, draw.Over)
		draw.Draw(coverage, area, image.Transparent, image.Point{}, draw.Src)
	}
}

// shade scales the coverage in area by the instance mask at each pixel
// centre.
func shade(coverage *image.Alpha, area image.Rectangle, inst tracerfx.BillboardInstance, toQuad mgl32.Mat3) {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			i := coverage.PixOffset(x, y)
			if coverage.Pix[i] == 0 {
				continue
			}
			q := toQuad.Mul3x1(mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, 1})
			if q.Z() == 0 {
				coverage.Pix[i] = 0
				continue
			}
			s := mgl32.Clamp(q.X()/q.Z(), 0, 1)
			t := mgl32.Clamp(q.Y()/q.Z(), 0, 1)
			uv := tracerfx.InterpolateUV(s, t)
			alpha := mgl32.Clamp(maskAt(inst, uv.X(), uv.Y()), 0, 1)
			coverage.Pix[i] = uint8(float32(coverage.Pix[i])*alpha + 0.5)
		}
	}
}

func maskAt(inst tracerfx.BillboardInstance, u, v float32) float32 {
	switch inst.Kind {
	case tracerfx.KindTracer:
		return tracerfx.TracerMask(u, v) * (1 - inst.Params.TimeStep)
	case tracerfx.KindSmokeTrail:
		return tracerfx.SmokeMask(inst.Params, u, v) * tracerfx.SmokeOpacity
	default:
		return tracerfx.TimedTrailMask(inst.Params, u, v) * tracerfx.TimedTrailOpacity
	}
}

func baseColor(kind tracerfx.ParticleKind) color.NRGBA {
	c := tracerfx.SmokeColor
	if kind == tracerfx.KindTracer {
		c = tracerfx.TracerColor
	}
	return color.NRGBA{R: channel(c.X()), G: channel(c.Y()), B: channel(c.Z()), A: 0xff}
}

func channel(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

func project(world mgl32.Vec3, viewProj mgl32.Mat4, w, h int) (mgl32.Vec2, bool) {
	clip := viewProj.Mul4x1(world.Vec4(1))
	if clip.W() <= 0 {
		return mgl32.Vec2{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x := (ndc.X() + 1) * 0.5 * float32(w)
	y := (1 - ndc.Y()) * 0.5 * float32(h)
	return mgl32.Vec2{x, y}, true
}

// pixelBounds is the pixel box around pts, limited to a one pixel margin
// around a w x h target so far off-screen corners stay in int range.
func pixelBounds(pts [4]mgl32.Vec2, w, h int) image.Rectangle {
	minX, minY := pts[0].X(), pts[0].Y()
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X()), max(maxX, p.X())
		minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
	}
	edge := func(v float32, limit int, round func(float64) float64) int {
		return int(round(float64(mgl32.Clamp(v, -1, float32(limit+1)))))
	}
	return image.Rect(
		edge(minX, w, math.Floor), edge(minY, h, math.Floor),
		edge(maxX, w, math.Ceil), edge(maxY, h, math.Ceil),
	)
}

// screenToQuad returns the projective map from screen space back to the unit
// square, where (0,0), (1,0), (1,1) and (0,1) land on pts in order. A planar
// quad under perspective is exactly such a map, so the recovered coordinates
// are perspective correct.
func screenToQuad(pts [4]mgl32.Vec2) (mgl32.Mat3, bool) {
	x0, y0 := pts[0].X(), pts[0].Y()
	x1, y1 := pts[1].X(), pts[1].Y()
	x2, y2 := pts[2].X(), pts[2].Y()
	x3, y3 := pts[3].X(), pts[3].Y()

	sx := x0 - x1 + x2 - x3
	sy := y0 - y1 + y2 - y3
	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	det := dx1*dy2 - dx2*dy1
	if det == 0 {
		return mgl32.Mat3{}, false
	}
	g := (sx*dy2 - dx2*sy) / det
	h := (dx1*sy - sx*dy1) / det

	// Columns of [a b c; d e f; g h 1].
	toScreen := mgl32.Mat3{
		x1 - x0 + g*x1, y1 - y0 + g*y1, g,
		x3 - x0 + h*x3, y3 - y0 + h*y3, h,
		x0, y0, 1,
	}
	if toScreen.Det() == 0 {
		return mgl32.Mat3{}, false
	}
	return toScreen.Inv(), true
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
