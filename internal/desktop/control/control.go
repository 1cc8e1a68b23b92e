// Package control drives a session from per-tick pointer and key input for
// windowed frontends, independent of the window library.
package control

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/danmaku/internal/input"
	"github.com/tomz197/danmaku/internal/loop"
	"github.com/tomz197/danmaku/internal/loop/config"
	"github.com/tomz197/danmaku/internal/object"
)

// Frame is the input sampled for one tick.
type Frame struct {
	Start  bool // Space, Enter, click or tap
	Escape bool
	Left   bool
	Right  bool

	PointerX     float64 // Mouse x in playfield units
	PointerMoved bool

	DragBegin bool // A touch started
	DragMove  bool // The tracked touch is down
	DragEnd   bool // The tracked touch was released
	DragX     float64
}

// Result is the last finished run.
type Result struct {
	Outcome      loop.Phase
	Score        int
	HighScore    int
	NewHighScore bool
}

// Options configures a Controller.
type Options struct {
	Params    config.Params
	Field     object.Playfield
	HighScore int
	Audio     loop.Audio
	Scores    loop.ScoreSink
	Logger    *log.Logger
}

// Controller owns a session and the frontend state around it.
type Controller struct {
	session     *loop.Session
	effects     *loop.Effects
	drag        input.Drag
	particles   []*object.Particle
	rng         *rand.Rand
	result      *Result
	resultDelay int // Ticks before a result accepts input
}

var _ loop.Presenter = (*Controller)(nil)

// New creates a controller with an idle session.
func New(opts Options) (*Controller, error) {
	session, err := loop.NewSession(opts.Params, opts.Field, opts.HighScore)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		session: session,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.effects = &loop.Effects{
		Audio:     opts.Audio,
		Scores:    opts.Scores,
		Presenter: c,
		Logger:    opts.Logger,
	}
	return c, nil
}

// Session returns the controlled session for rendering.
func (c *Controller) Session() *loop.Session {
	return c.session
}

// Result returns the last finished run, or nil.
func (c *Controller) Result() *Result {
	return c.result
}

// AcceptsInput reports whether the result screen takes restart input.
func (c *Controller) AcceptsInput() bool {
	return c.resultDelay <= 0
}

// Particles returns the live explosion particles.
func (c *Controller) Particles() []*object.Particle {
	return c.particles
}

// Resize forwards a new window size to the session.
func (c *Controller) Resize(width, height float64) {
	c.session.Resize(width, height)
}

// Step applies f and advances one tick.
func (c *Controller) Step(f Frame) {
	switch phase := c.session.Phase(); {
	case phase == loop.PhaseIdle:
		if f.Start {
			c.start()
		}
	case phase == loop.PhaseRunning:
		if f.Escape {
			c.session.Stop()
			break
		}
		c.steer(f)
		c.session.Tick()
	case phase.Terminal():
		if c.resultDelay > 0 {
			c.resultDelay--
			break
		}
		switch {
		case f.Escape:
			c.session.Reset()
			c.result = nil
		case f.Start:
			c.start()
		}
	}

	c.dispatch()
	c.updateParticles(1 / float64(c.session.Params().TickRate))
}

func (c *Controller) start() {
	c.drag.End()
	c.result = nil
	c.session.Start()
}

// steer applies drag first, then absolute pointer motion, then keys.
func (c *Controller) steer(f Frame) {
	switch {
	case f.DragBegin:
		c.drag.Begin(f.DragX, c.session.PlayerX())
	case f.DragEnd:
		c.drag.End()
	case f.DragMove:
		if x, ok := c.drag.Move(f.DragX); ok {
			c.session.SetPlayerHorizontalPosition(x)
		}
	}
	if c.drag.Active() {
		return
	}

	if f.PointerMoved {
		c.session.SetPlayerHorizontalPosition(f.PointerX)
		return
	}

	step := c.session.Field().Width * c.session.Params().KeyStep
	switch {
	case f.Left && !f.Right:
		c.session.SetPlayerHorizontalPosition(c.session.PlayerX() - step)
	case f.Right && !f.Left:
		c.session.SetPlayerHorizontalPosition(c.session.PlayerX() + step)
	}
}

func (c *Controller) dispatch() {
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

func (c *Controller) updateParticles(dt float64) {
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

// ShowResult stores the finished run for the result overlay.
func (c *Controller) ShowResult(outcome loop.Phase, score, highScore int, newHighScore bool) {
	c.result = &Result{
		Outcome:      outcome,
		Score:        score,
		HighScore:    highScore,
		NewHighScore: newHighScore,
	}
	c.resultDelay = int(config.ResultInputDelay * float64(c.session.Params().TickRate))
}

// Close abandons a running run so the background track stops.
func (c *Controller) Close() {
	c.session.Stop()
	c.dispatch()
}
