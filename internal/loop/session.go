// Package loop drives a single run of the game: the fixed-step tick, the
// countdown and the Idle/Running/Cleared/Failed state machine.
package loop

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tomz197/danmaku/internal/loop/config"
	"github.com/tomz197/danmaku/internal/object"
)

// ErrInvalidParams is returned by NewSession for unusable parameters.
var ErrInvalidParams = config.ErrInvalidParams

// Phase represents the current session phase.
type Phase int

const (
	PhaseIdle    Phase = iota // No run in progress
	PhaseRunning              // Countdown active
	PhaseCleared              // Boss defeated
	PhaseFailed               // Countdown reached zero
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCleared:
		return "cleared"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends a run.
func (p Phase) Terminal() bool {
	return p == PhaseCleared || p == PhaseFailed
}

// Session owns every entity of a run and advances them one tick at a time.
// A Session is not safe for concurrent use; hosts call it from their frame loop.
type Session struct {
	params config.Params
	rng    *rand.Rand

	phase     Phase
	runID     uuid.UUID
	score     int
	highScore int
	timer     int // Ticks remaining

	field        object.Playfield
	pendingField *object.Playfield // Applied at the start of the next tick

	pendingX   float64 // Latest pointer command
	hasPending bool

	player  *object.Player
	bullets object.Swarm[object.Bullet]
	enemies object.Swarm[object.Enemy]
	boss    *object.Boss
	spawner *object.Spawner

	events []Event
}

// NewSession creates an idle session for the given playfield. highScore is
// the persisted best score, read once by the host.
func NewSession(params config.Params, field object.Playfield, highScore int) (*Session, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if highScore < 0 {
		return nil, fmt.Errorf("%w: negative high score %d", ErrInvalidParams, highScore)
	}

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		params:    params,
		rng:       rand.New(rand.NewSource(seed)),
		phase:     PhaseIdle,
		highScore: highScore,
		timer:     params.DurationTicks,
		field:     field,
		spawner:   object.NewSpawner(params.SpawnInterval, params.BossScore),
	}
	s.player = object.NewPlayer(s.updateContext())
	return s, nil
}

// updateContext creates an UpdateContext from the current state.
func (s *Session) updateContext() object.UpdateContext {
	return object.UpdateContext{
		Field:  s.field,
		Params: s.params,
		Rand:   s.rng,
	}
}

// Start begins a new run. Valid from Idle or a terminal phase; a no-op while
// Running. Every entity is re-created.
func (s *Session) Start() bool {
	if s.phase == PhaseRunning {
		return false
	}

	s.applyResize()

	s.runID = uuid.New()
	s.score = 0
	s.timer = s.params.DurationTicks
	s.player = object.NewPlayer(s.updateContext())
	s.hasPending = false
	s.bullets = object.Swarm[object.Bullet]{}
	s.enemies = object.Swarm[object.Enemy]{}
	s.boss = nil
	s.spawner.Reset()
	s.phase = PhaseRunning

	s.emit(Event{Type: EventRunStarted, RunID: s.runID})
	return true
}

// Stop abandons the current run without a result and returns to Idle.
func (s *Session) Stop() bool {
	if s.phase != PhaseRunning {
		return false
	}
	s.phase = PhaseIdle
	s.emit(Event{Type: EventRunStopped, RunID: s.runID})
	return true
}

// Reset returns from a terminal phase to Idle (the home screen).
func (s *Session) Reset() bool {
	if !s.phase.Terminal() {
		return false
	}
	s.phase = PhaseIdle
	return true
}

// Tick advances the run by one step. Does nothing unless Running.
func (s *Session) Tick() {
	if s.phase != PhaseRunning {
		return
	}

	s.applyResize()
	s.applyInput()

	s.timer--
	if s.timer <= 0 {
		s.timer = 0
		s.end(PhaseFailed)
		return
	}

	s.update()
	s.collide()
}

// end performs the terminal transition once per run.
func (s *Session) end(outcome Phase) {
	if s.phase != PhaseRunning {
		return
	}
	s.phase = outcome

	newHigh := s.score > s.highScore
	if newHigh {
		s.highScore = s.score
	}

	s.emit(Event{
		Type:         EventRunEnded,
		RunID:        s.runID,
		Outcome:      outcome,
		Score:        s.score,
		HighScore:    s.highScore,
		NewHighScore: newHigh,
	})
}

// ObserveHighScore raises the known high score, e.g. when another player set
// a better one. Lower values are ignored.
func (s *Session) ObserveHighScore(score int) {
	if score > s.highScore {
		s.highScore = score
	}
}

// Resize records a new playfield size, applied at the start of the next tick.
func (s *Session) Resize(width, height float64) {
	s.pendingField = &object.Playfield{Width: width, Height: height}
	if s.phase != PhaseRunning {
		s.applyResize()
	}
}

// applyResize installs a pending playfield and rescales the player.
func (s *Session) applyResize() {
	if s.pendingField == nil {
		return
	}
	s.field = *s.pendingField
	s.pendingField = nil
	s.player.Rescale(s.updateContext())
}

// SetPlayerHorizontalPosition buffers the latest pointer x. The value is
// clamped into the playfield at the start of the next tick.
func (s *Session) SetPlayerHorizontalPosition(x float64) {
	s.pendingX = x
	s.hasPending = true
}

// applyInput moves the player to the buffered pointer position.
func (s *Session) applyInput() {
	if !s.hasPending {
		return
	}
	s.hasPending = false
	s.player.SetX(s.pendingX, s.field)
}

// PlayerX returns the player position including any buffered command.
func (s *Session) PlayerX() float64 {
	if s.hasPending {
		return s.field.ClampX(s.pendingX, s.player.W)
	}
	return s.player.X
}

// emit queues a side-effect intent.
func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

// Drain returns and clears the queued events.
func (s *Session) Drain() []Event {
	if len(s.events) == 0 {
		return nil
	}
	out := s.events
	s.events = nil
	return out
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Score returns the current run's score.
func (s *Session) Score() int { return s.score }

// HighScore returns the best score known to the session.
func (s *Session) HighScore() int { return s.highScore }

// TimerTicks returns the ticks remaining on the countdown.
func (s *Session) TimerTicks() int { return s.timer }

// RunID returns the id of the current or last run.
func (s *Session) RunID() uuid.UUID { return s.runID }

// Field returns the active playfield.
func (s *Session) Field() object.Playfield { return s.field }

// Params returns the session tuning.
func (s *Session) Params() config.Params { return s.params }
