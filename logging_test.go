package tracerfx

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(prefix string) (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return newLogger(prefix, &out, &errOut, 0, false), &out, &errOut
}

func TestDefaultLogger_Levels(t *testing.T) {
	l, out, errOut := newBufferLogger("fx")

	l.Debugf("hidden")
	l.Tracef("hidden")
	l.Infof("shots %d", 3)
	l.Warnf("slow frame")
	l.Errorf("lost %s", "particle")

	assert.Equal(t, "[fx] INFO: shots 3\n", out.String())
	assert.Equal(t, "[fx] WARN: slow frame\n[fx] ERROR: lost particle\n", errOut.String())

	out.Reset()
	l.SetDebug(true)
	l.Debugf("visible")
	l.Tracef("still hidden")
	assert.Equal(t, "[fx] DEBUG: visible\n", out.String())

	out.Reset()
	l.SetTrace(true)
	l.Tracef("now visible")
	assert.Equal(t, "[fx] TRACE: now visible\n", out.String())
}

func TestDefaultLogger_NamedSharesSink(t *testing.T) {
	l, out, _ := newBufferLogger("demo")
	child := l.Named("particles")

	child.Infof("hello")
	assert.Equal(t, "[demo/particles] INFO: hello\n", out.String())

	l.SetTrace(true)
	assert.True(t, child.TraceEnabled())

	bare, out, _ := newBufferLogger("")
	bare.Named("particles").Infof("x")
	assert.Equal(t, "[particles] INFO: x\n", out.String())
}

func TestParticleManager_TracesLifecycle(t *testing.T) {
	l, out, _ := newBufferLogger("fx")
	l.SetTrace(true)
	mgr := NewParticleManager(nil, l.Named("particles"))

	tr, err := NewTimedTrail(SpawnParams{End: mgl32.Vec3{1, 0, 0}, Lifetime: 0.1})
	require.NoError(t, err)
	require.NoError(t, mgr.Add(tr))
	require.NoError(t, mgr.Update(0.2))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "[fx/particles] TRACE: particle "+string(tr.Id())+" (timed-trail) added")
	assert.Contains(t, string(lines[1]), "(timed-trail) retired")
}
