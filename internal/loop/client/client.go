package client

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/danmaku/internal/audio"
	"github.com/tomz197/danmaku/internal/draw"
	"github.com/tomz197/danmaku/internal/input"
	"github.com/tomz197/danmaku/internal/loop"
	"github.com/tomz197/danmaku/internal/loop/config"
	"github.com/tomz197/danmaku/internal/loop/server"
	"github.com/tomz197/danmaku/internal/object"
)

// Client runs one player's session in a terminal: input, fixed-step
// simulation, effects and rendering.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	session      *loop.Session
	effects      *loop.Effects
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	drag         input.Drag
	particles    []*object.Particle
	rng          *rand.Rand
	styles       styles
	lastInput    time.Time
	inactivity   bool
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Params       config.Params
	Audio        loop.Audio         // Defaults to the terminal bell
	Renderer     *lipgloss.Renderer // Defaults to a renderer on the client writer
	Logger       *log.Logger
	Inactivity   bool // Warn and disconnect idle players
}

var _ loop.Presenter = (*Client)(nil)

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) (*Client, error) {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.NewRenderer(w)
	}

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := draw.TerminalSizeRawWith(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewCanvas(renderWidth, renderHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	field := object.Playfield{Width: float64(renderWidth), Height: float64(renderHeight * 2)}
	session, err := loop.NewSession(opts.Params, field, gs.HighScore())
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	handle := gs.RegisterClient(opts.Username)

	c := &Client{
		server:       gs,
		handle:       handle,
		session:      session,
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		writer:       w,
		inputStream:  input.StartStream(r),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		styles:       newStyles(renderer),
		lastInput:    time.Now(),
		inactivity:   opts.Inactivity,
		termSizeFunc: termSizeFunc,
		logger:       logger,
	}

	sound := opts.Audio
	if sound == nil {
		sound = audio.NewBell(chunkWriter)
	}
	c.effects = &loop.Effects{
		Audio:     sound,
		Scores:    handle,
		Presenter: c,
		Logger:    logger.With("user", opts.Username),
	}
	return c, nil
}

// Run starts the client loop. Blocks until the client quits, idles out or
// the server shuts down.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	defer draw.ShowCursor(c.writer)
	defer draw.DisableMouse(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart

		if err := c.frame(input.ReadInput(c.inputStream), delta); err != nil {
			c.close()
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.close()
	draw.ClearScreen(c.writer)
	return nil
}

// close abandons any running run and leaves the server.
func (c *Client) close() {
	c.session.Stop()
	c.effects.Dispatch(c.session.Drain())
	_ = c.chunkWriter.Flush()
	c.server.UnregisterClient(c.handle.ID)
}

// frame runs one Input -> Update -> Draw cycle.
func (c *Client) frame(in input.Input, delta time.Duration) error {
	c.state.Input = in
	c.state.delta = delta

	c.processInput()
	c.processServerEvents()
	c.updateScreen()

	switch c.screen() {
	case ScreenHome:
		c.updateHomeState()
	case ScreenPlaying:
		c.updatePlayingState()
	case ScreenResult:
		c.updateResultState()
	case ScreenShutdown:
		c.updateShutdownState()
	}

	c.dispatchEvents()
	c.updateParticles()
	c.updateNotice()

	return c.drawFrame()
}

// screen derives the visible screen from the session phase.
func (c *Client) screen() Screen {
	if c.state.shutdown {
		return ScreenShutdown
	}
	switch phase := c.session.Phase(); {
	case phase == loop.PhaseRunning:
		return ScreenPlaying
	case phase.Terminal():
		return ScreenResult
	default:
		return ScreenHome
	}
}

// processInput handles quitting and inactivity.
func (c *Client) processInput() {
	in := c.state.Input

	if len(in.Pressed) > 0 {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if c.inactivity {
		idle := time.Since(c.lastInput).Seconds()
		if idle > config.InactivityDisconnectUser {
			c.state.Running = false
		} else if idle > config.InactivityWarnUser {
			c.state.isInactive = true
		}
	}

	if in.Quit {
		c.state.Running = false
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				c.session.Stop()
				c.state.shutdown = true
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			case server.EventHighScore:
				c.session.ObserveHighScore(event.Score)
				c.showNotice(fmt.Sprintf("%s set a new high score: %d", displayName(event.Username), event.Score))
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area and resizes the playfield.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(c.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		c.state.forceClear = true
		c.canvas.ResizeUnscaled(renderWidth, renderHeight)
		c.session.Resize(float64(renderWidth), float64(renderHeight*2))
	}

	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = termWidth
	renderHeight = termHeight
	if renderWidth > config.MaxTermWidth {
		renderWidth = config.MaxTermWidth
	}
	if renderHeight > config.MaxTermHeight {
		renderHeight = config.MaxTermHeight
	}
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateHomeState handles the title screen.
func (c *Client) updateHomeState() {
	if c.state.Input.Start() {
		c.startGame()
	}
}

// startGame starts or restarts a run.
func (c *Client) startGame() {
	input.ResetKeyInput(c.inputStream)
	c.drag.End()
	c.state.accumulator = 0
	c.state.result = nil
	c.session.Start()
}

// updatePlayingState steers the player and advances the simulation.
func (c *Client) updatePlayingState() {
	in := c.state.Input

	if in.Escape {
		c.session.Stop()
		return
	}

	c.steer(in)

	tick := c.session.Params().TickDuration()
	c.state.accumulator += c.state.delta
	n := 0
	for c.state.accumulator >= tick && n < config.MaxTicksPerFrame {
		c.session.Tick()
		c.state.accumulator -= tick
		n++
		if c.session.Phase() != loop.PhaseRunning {
			break
		}
	}
	if n == config.MaxTicksPerFrame {
		c.state.accumulator = 0
	}
}

// steer converts keys and pointer input into a player position command.
// Mouse motion with the button held drags relative to the ship, plain motion
// places the ship under the pointer.
func (c *Client) steer(in input.Input) {
	field := c.session.Field()
	x := c.session.PlayerX()

	pointerX := float64(in.Mouse.X-c.canvas.OffsetCol()) + 0.5
	switch {
	case in.Mouse.Pressed:
		c.drag.Begin(pointerX, x)
	case in.Mouse.Released:
		c.drag.End()
	}

	if in.Mouse.Moved {
		if target, ok := c.drag.Move(pointerX); ok {
			c.session.SetPlayerHorizontalPosition(target)
		} else if !in.Mouse.Down {
			c.session.SetPlayerHorizontalPosition(pointerX)
		}
		return
	}

	step := field.Width * c.session.Params().KeyStep
	switch {
	case in.Left && !in.Right:
		c.session.SetPlayerHorizontalPosition(x - step)
	case in.Right && !in.Left:
		c.session.SetPlayerHorizontalPosition(x + step)
	}
}

// updateResultState handles the clear/failed screen.
func (c *Client) updateResultState() {
	if c.state.resultDelay > 0 {
		c.state.resultDelay -= c.state.delta.Seconds()
		return
	}

	in := c.state.Input
	switch {
	case in.Escape:
		c.session.Reset()
		c.state.result = nil
	case in.Start():
		c.startGame()
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

// dispatchEvents turns session events into particles and side effects.
func (c *Client) dispatchEvents() {
	events := c.session.Drain()
	if len(events) == 0 {
		return
	}

	speed := c.session.Field().Width * config.ParticleSpeed
	for _, e := range events {
		switch e.Type {
		case loop.EventEnemyDestroyed:
			c.particles = append(c.particles,
				object.Explosion(e.X, e.Y, config.EnemyExplosionParticles, speed, config.ParticleLifetime, c.rng)...)
		case loop.EventBossDefeated:
			c.particles = append(c.particles,
				object.Explosion(e.X, e.Y, config.BossExplosionParticles, speed*1.5, config.ParticleLifetime*2, c.rng)...)
		}
	}

	c.effects.Dispatch(events)
}

// updateParticles advances explosion particles and releases spent ones.
func (c *Client) updateParticles() {
	dt := c.state.delta.Seconds()
	kept := c.particles[:0]
	for _, p := range c.particles {
		if p.Update(dt) {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(c.particles[len(kept):])
	c.particles = kept
}

// showNotice displays a transient message line.
func (c *Client) showNotice(msg string) {
	c.state.notice = msg
	c.state.noticeTimer = config.NoticeDisplaySeconds
}

// updateNotice expires the notice and clears its text from the terminal.
func (c *Client) updateNotice() {
	if c.state.notice == "" {
		return
	}
	c.state.noticeTimer -= c.state.delta.Seconds()
	if c.state.noticeTimer <= 0 {
		c.state.notice = ""
		c.state.forceClear = true
	}
}

// ShowResult records a finished run for the result screen and the leaderboard.
func (c *Client) ShowResult(outcome loop.Phase, score, highScore int, newHighScore bool) {
	c.state.result = &runResult{
		outcome:      outcome,
		score:        score,
		highScore:    highScore,
		newHighScore: newHighScore,
	}
	c.state.resultDelay = config.ResultInputDelay
	c.server.RecordRun(c.handle.ID, score)
}

// displayName returns a printable name for a possibly empty username.
func displayName(username string) string {
	if username == "" {
		return "someone"
	}
	return username
}
