package debugdraw

import (
	"image"

	"github.com/gekko3d/tracerfx"
	"github.com/pkg/errors"
)

// SnapshotStage runs right after tracerfx.Render, once the frame's billboard
// batch is final.
var SnapshotStage = tracerfx.Stage{Name: "DebugSnapshot"}

// SnapshotModule rasterizes the particles module's BillboardBatch from the
// app Camera every frame and writes it to Path every Every frames. With
// Every at 0 nothing is written until Snapshotter.Write is called.
type SnapshotModule struct {
	Path   string
	Width  int
	Height int
	Every  uint64
}

func (m SnapshotModule) Install(app *tracerfx.App) {
	app.UseStage(SnapshotStage, tracerfx.AfterStage(tracerfx.Render))
	app.AddResources(&Snapshotter{
		path:   m.Path,
		every:  m.Every,
		img:    image.NewRGBA(image.Rect(0, 0, m.Width, m.Height)),
		logger: app.Logger().Named("snapshot"),
	})
	app.UseSystem(tracerfx.System(snapshotSystem).InStage(SnapshotStage))
}

// Snapshotter holds the last captured frame.
type Snapshotter struct {
	path   string
	every  uint64
	frames uint64
	img    *image.RGBA
	logger tracerfx.Logger
}

func (s *Snapshotter) Image() *image.RGBA { return s.img }

func (s *Snapshotter) Frames() uint64 { return s.frames }

// Capture replaces the held image with batch seen from cam.
func (s *Snapshotter) Capture(batch *tracerfx.BillboardBatch, cam *tracerfx.Camera) {
	clear(s.img.Pix)
	b := s.img.Bounds()
	if b.Empty() {
		return
	}
	aspect := float32(b.Dx()) / float32(b.Dy())
	Rasterize(s.img, batch.Instances, cam.ViewProjection(aspect))
}

func (s *Snapshotter) Write() error {
	if err := SavePNG(s.path, s.img); err != nil {
		return errors.Wrapf(err, "snapshot %s", s.path)
	}
	return nil
}

func snapshotSystem(s *Snapshotter, batch *tracerfx.BillboardBatch, cam *tracerfx.Camera) {
	s.frames++
	s.Capture(batch, cam)
	if s.every == 0 || s.frames%s.every != 0 {
		return
	}
	if err := s.Write(); err != nil {
		s.logger.Errorf("%v", err)
		return
	}
	s.logger.Debugf("frame %d written to %s", s.frames, s.path)
}
