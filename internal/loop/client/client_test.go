package client

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/danmaku/internal/input"
	"github.com/tomz197/danmaku/internal/loop"
	"github.com/tomz197/danmaku/internal/loop/config"
	"github.com/tomz197/danmaku/internal/loop/server"
)

type recordingAudio struct {
	calls []string
}

func (a *recordingAudio) PlayDestroy() { a.calls = append(a.calls, "destroy") }
func (a *recordingAudio) PlayFanfare() { a.calls = append(a.calls, "fanfare") }
func (a *recordingAudio) StartMusic()  { a.calls = append(a.calls, "start") }
func (a *recordingAudio) StopMusic()   { a.calls = append(a.calls, "stop") }

type testClient struct {
	*Client
	hub   *server.Server
	audio *recordingAudio
	out   *bytes.Buffer
	size  *[2]int
}

func newTestClient(t *testing.T, tune func(*config.Params)) *testClient {
	t.Helper()

	params := config.Default()
	params.Seed = 1
	params.SpawnInterval = 100000
	params.FireInterval = 100000
	if tune != nil {
		tune(&params)
	}

	logger := log.New(io.Discard)
	hub := server.NewServer(server.Options{Logger: logger})
	size := &[2]int{100, 30}
	out := &bytes.Buffer{}
	sound := &recordingAudio{}

	c, err := NewClient(hub, bufio.NewReader(strings.NewReader("")), out, ClientOptions{
		TermSizeFunc: func() (int, int, error) { return size[0], size[1], nil },
		Username:     "alice",
		Params:       params,
		Audio:        sound,
		Logger:       logger,
	})
	require.NoError(t, err)
	return &testClient{Client: c, hub: hub, audio: sound, out: out, size: size}
}

func ticks(n int) time.Duration {
	return time.Duration(n) * (time.Second / 60)
}

func TestNewClientRejectsInvalidParams(t *testing.T) {
	hub := server.NewServer(server.Options{Logger: log.New(io.Discard)})
	_, err := NewClient(hub, bufio.NewReader(strings.NewReader("")), io.Discard, ClientOptions{
		TermSizeFunc: func() (int, int, error) { return 80, 24, nil },
		Params:       config.Params{},
	})
	assert.ErrorIs(t, err, loop.ErrInvalidParams)
	assert.Zero(t, hub.Count())
}

func TestClientFieldFollowsTerminal(t *testing.T) {
	c := newTestClient(t, nil)
	assert.Equal(t, 100.0, c.session.Field().Width)
	assert.Equal(t, 60.0, c.session.Field().Height)
	assert.Equal(t, 1, c.hub.Count())

	*c.size = [2]int{80, 20}
	require.NoError(t, c.frame(input.Input{}, 0))
	assert.Equal(t, 80.0, c.session.Field().Width)
	assert.Equal(t, 40.0, c.session.Field().Height)
}

func TestClientClampsLargeTerminal(t *testing.T) {
	c := newTestClient(t, nil)
	*c.size = [2]int{config.MaxTermWidth + 40, config.MaxTermHeight + 10}
	require.NoError(t, c.frame(input.Input{}, 0))

	assert.Equal(t, config.MaxTermWidth, c.canvas.TerminalWidth())
	assert.Equal(t, 20, c.canvas.OffsetCol())
	assert.Equal(t, 5, c.canvas.OffsetRow())
	assert.Equal(t, float64(config.MaxTermHeight*2), c.session.Field().Height)
}

func TestClientHomeScreen(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{}, ticks(1)))

	assert.Equal(t, ScreenHome, c.screen())
	assert.Contains(t, c.out.String(), "HIGH SCORE 000000")
}

func TestClientStartsRun(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, ticks(1)))

	assert.Equal(t, loop.PhaseRunning, c.session.Phase())
	assert.Equal(t, []string{"start"}, c.audio.calls)

	require.NoError(t, c.frame(input.Input{}, ticks(1)))
	assert.Contains(t, c.out.String(), "SCORE 000000")
}

func TestClientClickStartsRun(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Mouse: input.Mouse{Pressed: true, Down: true}}, ticks(1)))
	assert.Equal(t, loop.PhaseRunning, c.session.Phase())
}

func TestClientFixedStep(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	start := c.session.TimerTicks()

	require.NoError(t, c.frame(input.Input{}, ticks(3)))
	assert.Equal(t, start-3, c.session.TimerTicks())

	// Half a tick carries over to the next frame.
	half := ticks(1) / 2
	require.NoError(t, c.frame(input.Input{}, half))
	assert.Equal(t, start-3, c.session.TimerTicks())
	require.NoError(t, c.frame(input.Input{}, ticks(1)-half))
	assert.Equal(t, start-4, c.session.TimerTicks())
}

func TestClientCatchUpIsCapped(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	start := c.session.TimerTicks()

	require.NoError(t, c.frame(input.Input{}, time.Second))
	assert.Equal(t, start-config.MaxTicksPerFrame, c.session.TimerTicks())
	assert.Zero(t, c.state.accumulator)
}

func TestClientKeyboardSteering(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	x := c.session.PlayerX()

	require.NoError(t, c.frame(input.Input{Left: true}, 0))
	assert.InDelta(t, x-2, c.session.PlayerX(), 1e-9)

	require.NoError(t, c.frame(input.Input{Right: true}, 0))
	assert.InDelta(t, x, c.session.PlayerX(), 1e-9)

	require.NoError(t, c.frame(input.Input{Left: true, Right: true}, 0))
	assert.InDelta(t, x, c.session.PlayerX(), 1e-9)
}

func TestClientPointerSteering(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, 0))

	require.NoError(t, c.frame(input.Input{Mouse: input.Mouse{X: 20, Moved: true}}, 0))
	assert.InDelta(t, 20.5, c.session.PlayerX(), 1e-9)

	// Past the edge the ship stays fully inside.
	require.NoError(t, c.frame(input.Input{Mouse: input.Mouse{X: 99, Moved: true}}, 0))
	assert.InDelta(t, 97, c.session.PlayerX(), 1e-9)
}

func TestClientDragIsRelative(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	x := c.session.PlayerX()

	require.NoError(t, c.frame(input.Input{Mouse: input.Mouse{X: 10, Pressed: true, Down: true}}, 0))
	assert.InDelta(t, x, c.session.PlayerX(), 1e-9)
	assert.True(t, c.drag.Active())

	require.NoError(t, c.frame(input.Input{Mouse: input.Mouse{X: 15, Moved: true, Down: true}}, 0))
	assert.InDelta(t, x+5, c.session.PlayerX(), 1e-9)

	require.NoError(t, c.frame(input.Input{Mouse: input.Mouse{X: 15, Released: true}}, 0))
	assert.False(t, c.drag.Active())
}

func TestClientEscapeAbandonsRun(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	require.NoError(t, c.frame(input.Input{Escape: true}, ticks(1)))

	assert.Equal(t, loop.PhaseIdle, c.session.Phase())
	assert.Equal(t, []string{"start", "stop"}, c.audio.calls)
	assert.Nil(t, c.state.result)
	assert.Empty(t, c.hub.TopScores())
}

func TestClientTimeoutShowsResult(t *testing.T) {
	c := newTestClient(t, func(p *config.Params) { p.DurationTicks = 3 })
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	require.NoError(t, c.frame(input.Input{}, ticks(4)))

	assert.Equal(t, loop.PhaseFailed, c.session.Phase())
	assert.Equal(t, ScreenResult, c.screen())
	require.NotNil(t, c.state.result)
	assert.Equal(t, loop.PhaseFailed, c.state.result.outcome)
	assert.Equal(t, []string{"start", "stop"}, c.audio.calls)
	assert.Contains(t, c.out.String(), "FAILED")

	top := c.hub.TopScores()
	require.Len(t, top, 1)
	assert.Equal(t, "alice", top[0].Username)

	// Input is ignored until the result delay passes.
	require.NoError(t, c.frame(input.Input{Space: true}, ticks(1)))
	assert.Equal(t, loop.PhaseFailed, c.session.Phase())

	require.NoError(t, c.frame(input.Input{}, time.Second))
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	assert.Equal(t, loop.PhaseRunning, c.session.Phase())
	assert.Nil(t, c.state.result)
}

func TestClientResultEscapeReturnsHome(t *testing.T) {
	c := newTestClient(t, func(p *config.Params) { p.DurationTicks = 1 })
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	require.NoError(t, c.frame(input.Input{}, ticks(1)))
	require.Equal(t, loop.PhaseFailed, c.session.Phase())

	require.NoError(t, c.frame(input.Input{}, time.Second))
	require.NoError(t, c.frame(input.Input{Escape: true}, 0))
	assert.Equal(t, loop.PhaseIdle, c.session.Phase())
	assert.Equal(t, ScreenHome, c.screen())
}

func TestClientObservesRemoteHighScore(t *testing.T) {
	c := newTestClient(t, nil)
	other := c.hub.RegisterClient("bob")
	other.Submit(750)

	require.NoError(t, c.frame(input.Input{}, ticks(1)))
	assert.Equal(t, 750, c.session.HighScore())
	assert.Contains(t, c.state.notice, "bob")
	assert.Contains(t, c.out.String(), "bob set a new high score: 750")

	// The notice expires.
	require.NoError(t, c.frame(input.Input{}, time.Duration(config.NoticeDisplaySeconds*float64(time.Second))))
	assert.Empty(t, c.state.notice)
}

func TestClientServerShutdown(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, 0))

	done := make(chan struct{})
	go func() {
		c.hub.Shutdown(50 * time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool {
		return c.frame(input.Input{}, 0) == nil && c.state.shutdown
	}, time.Second, 5*time.Millisecond)
	<-done

	assert.Equal(t, ScreenShutdown, c.screen())
	assert.Equal(t, loop.PhaseIdle, c.session.Phase())
	assert.Contains(t, c.out.String(), "SERVER SHUTTING DOWN")

	require.NoError(t, c.frame(input.Input{}, time.Duration(config.ShutdownDisplaySeconds*float64(time.Second))))
	assert.False(t, c.state.Running)
}

func TestClientQuit(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Quit: true}, 0))
	assert.False(t, c.state.Running)

	c.close()
	assert.Zero(t, c.hub.Count())
}

func TestClientCloseStopsRun(t *testing.T) {
	c := newTestClient(t, nil)
	require.NoError(t, c.frame(input.Input{Space: true}, 0))
	c.close()

	assert.Equal(t, loop.PhaseIdle, c.session.Phase())
	assert.Equal(t, []string{"start", "stop"}, c.audio.calls)
	assert.Zero(t, c.hub.Count())
}

func TestBossBar(t *testing.T) {
	assert.Equal(t, "BOSS [██··]", bossBar(40, 80, 4))
	assert.Equal(t, "BOSS [····]", bossBar(0, 80, 2))
	assert.Equal(t, "BOSS [████]", bossBar(80, 80, 4))
}
