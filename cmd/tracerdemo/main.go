package main

import (
	"flag"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/gekko3d/tracerfx"
	"github.com/gekko3d/tracerfx/debugdraw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	windowWidth  = 1280
	windowHeight = 720
)

func init() {
	runtime.LockOSThread()
}

// gun fires a shot at a random target every interval.
type gun struct {
	interval float32
	acc      float32
	muzzle   mgl32.Vec3
	rng      *rand.Rand
}

func gunSystem(t *tracerfx.Time, g *gun, sp *tracerfx.Spawner) {
	g.acc += t.Seconds()
	for g.acc >= g.interval {
		g.acc -= g.interval
		target := mgl32.Vec3{
			g.rng.Float32()*40 - 20,
			g.rng.Float32()*6 + 1,
			-30 - g.rng.Float32()*30,
		}
		sp.Fire(g.muzzle, target)
	}
}

// orbitSystem swings the camera around the firing line so the billboards
// visibly re-orient.
func orbitSystem(t *tracerfx.Time, cam *tracerfx.Camera) {
	angle := float64(t.Time.UnixNano()%int64(20*time.Second)) / float64(20*time.Second) * 2 * math.Pi
	cam.Position = mgl32.Vec3{
		float32(math.Sin(angle)) * 25,
		6,
		float32(math.Cos(angle)) * 25,
	}
	cam.Target = mgl32.Vec3{0, 2, -20}
}

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	trace := flag.Bool("trace", false, "Log every particle add and retire")
	frames := flag.Int("frames", 0, "Stop after this many frames (0 = until the window closes)")
	interval := flag.Float64("interval", 0.15, "Seconds between shots")
	snapshot := flag.String("snapshot", "", "Write the last frame's billboards to this PNG on exit")
	flag.Parse()

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(windowWidth, windowHeight, "tracerfx", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	start := time.Now()
	glfw.SetTime(0)
	glfwNow := func() time.Time {
		return start.Add(time.Duration(glfw.GetTime() * float64(time.Second)))
	}

	modules := []tracerfx.Module{
		tracerfx.LoggingModule{Prefix: "tracerdemo", Debug: *debug, Trace: *trace},
		tracerfx.TimeModule{Now: glfwNow},
		tracerfx.NewParticlesModule(),
	}
	if *snapshot != "" {
		modules = append(modules, debugdraw.SnapshotModule{
			Path:   *snapshot,
			Width:  windowWidth,
			Height: windowHeight,
		})
	}
	app := tracerfx.NewAppBuilder().UseModule(modules...).Build()

	app.AddResources(&gun{
		interval: float32(*interval),
		muzzle:   mgl32.Vec3{0, 1.5, 0},
		rng:      rand.New(rand.NewSource(7)),
	})
	app.UseSystem(tracerfx.System(gunSystem).InStage(tracerfx.Update))
	app.UseSystem(tracerfx.System(orbitSystem).InStage(tracerfx.PreRender))

	logger := app.Logger()
	mgr, _ := tracerfx.Resource[tracerfx.ParticleManager](app)

	app.Run(func() bool {
		glfw.PollEvents()
		if window.ShouldClose() {
			return true
		}
		if *frames > 0 && app.Frame() >= uint64(*frames) {
			return true
		}
		if app.Frame()%120 == 0 {
			st := mgr.Stats()
			logger.Infof("frame %d: %d live, %d added, %d retired", st.Frames, st.Live, st.Added, st.Retired)
		}
		return false
	})

	if snap, ok := tracerfx.Resource[debugdraw.Snapshotter](app); ok {
		if err := snap.Write(); err != nil {
			logger.Errorf("%v", err)
		}
	}

	if err := mgr.Clear(); err != nil {
		logger.Errorf("teardown: %v", err)
	}
	logger.Infof("done after %d frames", app.Frame())
}
