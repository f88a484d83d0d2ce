package tracerfx

import (
	"time"
)

// Time is the caller-side frame clock. Particles never read the wall clock
// themselves; they only see the Dt handed to them.
type Time struct {
	Time time.Time
	Dt   time.Duration
	now  func() time.Time
}

// Seconds returns Dt as float seconds.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeModule struct {
	// Now overrides the clock source, e.g. a window system timer or a fake
	// clock in tests. Defaults to time.Now.
	Now func() time.Time
}

func (mod TimeModule) Install(app *App) {
	now := mod.Now
	if now == nil {
		now = time.Now
	}
	app.addResources(&Time{
		Time: now(),
		Dt:   0,
		now:  now,
	})
	app.UseSystem(System(timeSystem).InStage(PreUpdate))
}

func timeSystem(t *Time) {
	current := t.now()
	t.Dt = current.Sub(t.Time)
	if t.Dt < 0 {
		t.Dt = 0
	}
	t.Time = current
}
