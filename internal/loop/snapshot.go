package loop

import (
	"github.com/tomz197/danmaku/internal/object"
)

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	Phase      Phase
	Field      object.Playfield
	Player     object.Player
	Bullets    []object.Bullet
	Enemies    []object.Enemy
	Boss       *object.Boss // nil when no boss is active
	Score      int
	HighScore  int
	TimerTicks int
	TickRate   int
}

// Seconds returns the countdown in seconds.
func (s Snapshot) Seconds() float64 {
	if s.TickRate <= 0 {
		return 0
	}
	return float64(s.TimerTicks) / float64(s.TickRate)
}

// Snapshot copies the current state. The result does not alias the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:      s.phase,
		Field:      s.field,
		Player:     *s.player,
		Bullets:    s.bullets.Clone(),
		Enemies:    s.enemies.Clone(),
		Score:      s.score,
		HighScore:  s.highScore,
		TimerTicks: s.timer,
		TickRate:   s.params.TickRate,
	}
	if s.boss != nil {
		boss := *s.boss
		snap.Boss = &boss
	}
	return snap
}

// Draw renders the playfield entities onto the canvas.
func (s *Session) Draw(ctx object.DrawContext) error {
	for i, n := 0, s.bullets.Len(); i < n; i++ {
		if err := s.bullets.At(i).Draw(ctx); err != nil {
			return err
		}
	}
	for i, n := 0, s.enemies.Len(); i < n; i++ {
		if err := s.enemies.At(i).Draw(ctx); err != nil {
			return err
		}
	}
	if s.boss != nil {
		if err := s.boss.Draw(ctx); err != nil {
			return err
		}
	}
	if s.player.W > 0 {
		return s.player.Draw(ctx)
	}
	return nil
}

// Boss returns the active boss HP and max HP, and whether a boss exists.
func (s *Session) Boss() (hp, maxHP int, ok bool) {
	if s.boss == nil {
		return 0, 0, false
	}
	return s.boss.HP, s.boss.MaxHP, true
}
