package loop

import (
	"github.com/tomz197/danmaku/internal/object"
)

// update runs the movement stage in its fixed order: player fire, bullets,
// enemy spawn and descent, boss activation and movement.
func (s *Session) update() {
	ctx := s.updateContext()

	if b, fired := s.player.Update(ctx); fired {
		s.bullets.Append(b)
	}

	s.bullets.Prune(func(b *object.Bullet) bool {
		return b.Update(ctx)
	})

	s.spawner.TrySpawnEnemy(ctx, s.score, s.boss != nil, &s.enemies)
	s.enemies.Prune(func(e *object.Enemy) bool {
		return e.Update(ctx)
	})

	if boss := s.spawner.TryActivateBoss(ctx, s.score, s.boss != nil, &s.enemies); boss != nil {
		s.boss = boss
		s.emit(Event{Type: EventBossAppeared, RunID: s.runID, MaxHP: boss.MaxHP})
	}
	if s.boss != nil {
		s.boss.Update(ctx)
	}
}
