package tracerfx

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Scene is the external owner of drawable objects. The manager registers a
// particle when it is added and deregisters it when it retires.
type Scene interface {
	RegisterRenderable(r Renderable) error
	DeregisterRenderable(r Renderable) error
}

type nopScene struct{}

func (nopScene) RegisterRenderable(Renderable) error   { return nil }
func (nopScene) DeregisterRenderable(Renderable) error { return nil }

// BillboardInstance is everything a backend needs to draw one particle this
// frame.
type BillboardInstance struct {
	Id          ParticleId
	Kind        ParticleKind
	Position    mgl32.Vec3
	Orientation mgl32.Mat3
	Params      AppearanceParams // clamped
	Geometry    Quad
	LengthScale float32
}

// Model returns the object-to-world matrix: T * R * S(1, LengthScale, 1).
func (b BillboardInstance) Model() mgl32.Mat4 {
	translate := mgl32.Translate3D(b.Position.X(), b.Position.Y(), b.Position.Z())
	scale := mgl32.Scale3D(1, b.LengthScale, 1)
	return translate.Mul4(b.Orientation.Mat4()).Mul4(scale)
}

// Corners returns the quad's world-space corners in Quad.Vertices order.
func (b BillboardInstance) Corners() [4]mgl32.Vec3 {
	model := b.Model()
	var out [4]mgl32.Vec3
	for i, v := range b.Geometry.Vertices() {
		out[i] = mgl32.TransformCoordinate(v, model)
	}
	return out
}

// RenderList is an in-memory Scene. Backends pull the current frame's
// billboards from it with Collect.
type RenderList struct {
	entries map[ParticleId]Renderable
	order   []ParticleId
}

func NewRenderList() *RenderList {
	return &RenderList{entries: make(map[ParticleId]Renderable)}
}

func (l *RenderList) RegisterRenderable(r Renderable) error {
	if _, ok := l.entries[r.Id()]; ok {
		return errors.Wrapf(ErrDuplicateParticle, "renderable %s", r.Id())
	}
	l.entries[r.Id()] = r
	l.order = append(l.order, r.Id())
	return nil
}

func (l *RenderList) DeregisterRenderable(r Renderable) error {
	id := r.Id()
	if _, ok := l.entries[id]; !ok {
		return errors.Wrapf(ErrUnknownRenderable, "renderable %s", id)
	}
	delete(l.entries, id)
	l.order = slices.DeleteFunc(l.order, func(o ParticleId) bool { return o == id })
	return nil
}

func (l *RenderList) Len() int { return len(l.entries) }

func (l *RenderList) Contains(id ParticleId) bool {
	_, ok := l.entries[id]
	return ok
}

// Collect builds this frame's billboards, oriented towards cameraPosition.
// Entries past their lifetime are skipped; the rest carry clamped params.
func (l *RenderList) Collect(cameraPosition mgl32.Vec3) []BillboardInstance {
	return l.AppendInstances(make([]BillboardInstance, 0, len(l.order)), cameraPosition)
}

// AppendInstances is Collect reusing dst's storage.
func (l *RenderList) AppendInstances(dst []BillboardInstance, cameraPosition mgl32.Vec3) []BillboardInstance {
	for _, id := range l.order {
		r := l.entries[id]
		params := r.Appearance()
		if params.TimeStep > 1 {
			continue
		}
		geom := r.Geometry()
		dst = append(dst, BillboardInstance{
			Id:          id,
			Kind:        r.Kind(),
			Position:    r.Position(),
			Orientation: SolveBillboard(r.Direction(), r.Position(), cameraPosition),
			Params:      params.Clamped(),
			Geometry:    geom,
			LengthScale: geom.LengthScale(r.Scale()),
		})
	}
	return dst
}
