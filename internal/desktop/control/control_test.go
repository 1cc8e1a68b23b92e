package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/danmaku/internal/loop"
	"github.com/tomz197/danmaku/internal/loop/config"
	"github.com/tomz197/danmaku/internal/object"
)

type countingAudio struct {
	started, stopped int
}

func (a *countingAudio) PlayDestroy() {}
func (a *countingAudio) PlayFanfare() {}
func (a *countingAudio) StartMusic()  { a.started++ }
func (a *countingAudio) StopMusic()   { a.stopped++ }

type sinkFunc func(int)

func (f sinkFunc) Submit(score int) { f(score) }

func newController(t *testing.T, tune func(*config.Params), opts Options) *Controller {
	t.Helper()
	params := config.Default()
	params.Seed = 1
	params.FireInterval = 100000
	params.SpawnInterval = 100000
	if tune != nil {
		tune(&params)
	}
	opts.Params = params
	opts.Field = object.Playfield{Width: 1000, Height: 1000}

	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidParams(t *testing.T) {
	_, err := New(Options{Params: config.Params{}})
	assert.ErrorIs(t, err, loop.ErrInvalidParams)
}

func TestStartOnTap(t *testing.T) {
	sound := &countingAudio{}
	c := newController(t, nil, Options{Audio: sound})

	c.Step(Frame{})
	assert.Equal(t, loop.PhaseIdle, c.Session().Phase())

	c.Step(Frame{Start: true})
	assert.Equal(t, loop.PhaseRunning, c.Session().Phase())
	assert.Equal(t, 1, sound.started)
}

func TestRunningStepTicks(t *testing.T) {
	c := newController(t, nil, Options{})
	c.Step(Frame{Start: true})
	start := c.Session().TimerTicks()

	c.Step(Frame{})
	c.Step(Frame{})
	assert.Equal(t, start-2, c.Session().TimerTicks())
}

func TestPointerAndKeys(t *testing.T) {
	c := newController(t, nil, Options{})
	c.Step(Frame{Start: true})

	c.Step(Frame{PointerX: 300, PointerMoved: true})
	assert.InDelta(t, 300, c.Session().PlayerX(), 1e-9)

	c.Step(Frame{Right: true})
	assert.InDelta(t, 320, c.Session().PlayerX(), 1e-9)

	c.Step(Frame{Left: true})
	assert.InDelta(t, 300, c.Session().PlayerX(), 1e-9)
}

func TestDragIgnoresPointer(t *testing.T) {
	c := newController(t, nil, Options{})
	c.Step(Frame{Start: true})
	x := c.Session().PlayerX()

	c.Step(Frame{DragBegin: true, DragX: 900})
	assert.InDelta(t, x, c.Session().PlayerX(), 1e-9)

	// Moving the touch moves the ship by the same delta, and absolute
	// pointer motion is ignored while dragging.
	c.Step(Frame{DragMove: true, DragX: 800, PointerX: 10, PointerMoved: true})
	assert.InDelta(t, x-100, c.Session().PlayerX(), 1e-9)

	c.Step(Frame{DragEnd: true})
	c.Step(Frame{PointerX: 10, PointerMoved: true})
	assert.InDelta(t, 30, c.Session().PlayerX(), 1e-9)
}

func TestEscapeStopsRun(t *testing.T) {
	sound := &countingAudio{}
	c := newController(t, nil, Options{Audio: sound})
	c.Step(Frame{Start: true})
	c.Step(Frame{Escape: true})

	assert.Equal(t, loop.PhaseIdle, c.Session().Phase())
	assert.Equal(t, 1, sound.stopped)
	assert.Nil(t, c.Result())
}

func TestResultFlow(t *testing.T) {
	var submitted []int
	c := newController(t, func(p *config.Params) { p.DurationTicks = 2 }, Options{
		HighScore: 0,
		Scores:    sinkFunc(func(s int) { submitted = append(submitted, s) }),
	})
	c.Step(Frame{Start: true})
	c.Step(Frame{})
	c.Step(Frame{})

	require.Equal(t, loop.PhaseFailed, c.Session().Phase())
	require.NotNil(t, c.Result())
	assert.Equal(t, loop.PhaseFailed, c.Result().Outcome)
	assert.False(t, c.Result().NewHighScore)
	assert.Empty(t, submitted)
	assert.False(t, c.AcceptsInput())

	delay := int(config.ResultInputDelay * 60)
	for i := 0; i < delay; i++ {
		c.Step(Frame{Start: true})
		require.Equal(t, loop.PhaseFailed, c.Session().Phase(), "step %d", i)
	}
	assert.True(t, c.AcceptsInput())

	c.Step(Frame{Escape: true})
	assert.Equal(t, loop.PhaseIdle, c.Session().Phase())
	assert.Nil(t, c.Result())
}

func TestResizeDeferredWhileRunning(t *testing.T) {
	c := newController(t, nil, Options{})
	c.Step(Frame{Start: true})
	c.Resize(500, 400)
	assert.Equal(t, 1000.0, c.Session().Field().Width)

	c.Step(Frame{})
	assert.Equal(t, 500.0, c.Session().Field().Width)
}

func TestCloseStopsMusic(t *testing.T) {
	sound := &countingAudio{}
	c := newController(t, nil, Options{Audio: sound})
	c.Step(Frame{Start: true})
	c.Close()

	assert.Equal(t, loop.PhaseIdle, c.Session().Phase())
	assert.Equal(t, 1, sound.stopped)
}
