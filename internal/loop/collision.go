package loop

import (
	"github.com/tomz197/danmaku/internal/physics"
)

// collide runs the collision and scoring stage. Bullets and enemies are both
// scanned last to first so swap-removal never moves an unvisited element into
// an already visited slot.
func (s *Session) collide() {
	for i := s.bullets.Len() - 1; i >= 0; i-- {
		bullet := s.bullets.At(i).Rect()

		if s.hitEnemy(bullet) {
			s.bullets.RemoveAt(i)
			continue
		}

		if s.boss == nil || !physics.Overlaps(bullet, s.boss.Rect()) {
			continue
		}
		s.bullets.RemoveAt(i)
		if s.hitBoss() {
			return
		}
	}
}

// hitEnemy removes the last-inserted enemy overlapping r and scores it.
func (s *Session) hitEnemy(r physics.Rect) bool {
	for j := s.enemies.Len() - 1; j >= 0; j-- {
		e := s.enemies.At(j)
		if !physics.Overlaps(r, e.Rect()) {
			continue
		}

		x, y := e.X, e.Y
		s.enemies.RemoveAt(j)
		s.score += s.params.ScoreEnemy
		s.emit(Event{Type: EventEnemyDestroyed, RunID: s.runID, X: x, Y: y})
		return true
	}
	return false
}

// hitBoss damages the boss. Returns true when the boss is defeated and the
// run has been cleared.
func (s *Session) hitBoss() bool {
	defeated := s.boss.Hit(s.params.BossDamage)
	s.score += s.params.ScoreBossHit
	s.emit(Event{Type: EventBossHit, RunID: s.runID, HP: s.boss.HP, MaxHP: s.boss.MaxHP})
	if !defeated {
		return false
	}

	s.score += s.params.ScoreBossClear
	s.emit(Event{Type: EventBossDefeated, RunID: s.runID, X: s.boss.X, Y: s.boss.Y})
	s.boss = nil
	s.end(PhaseCleared)
	return true
}
