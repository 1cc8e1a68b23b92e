package object

// Spawner creates enemies on a fixed cadence until the boss threshold is
// reached, then activates the boss exactly once.
type Spawner struct {
	interval  int
	threshold int
	timer     int
	activated bool // Boss already created this run
}

// NewSpawner creates a spawner with an enemy cadence and a boss score threshold.
func NewSpawner(interval, threshold int) *Spawner {
	if interval < 1 {
		interval = 1
	}
	return &Spawner{
		interval:  interval,
		threshold: threshold,
	}
}

// Reset zeroes the spawn timer and re-arms the boss for a new run.
func (s *Spawner) Reset() {
	s.timer = 0
	s.activated = false
}

// TrySpawnEnemy advances the spawn timer while no boss is active and the score
// is below the threshold. When the timer reaches the interval it appends one
// enemy. Returns true if an enemy was spawned.
func (s *Spawner) TrySpawnEnemy(ctx UpdateContext, score int, bossActive bool, enemies *Swarm[Enemy]) bool {
	if bossActive || score >= s.threshold {
		return false
	}
	if !ctx.Field.Valid() {
		return false
	}

	s.timer++
	if s.timer < s.interval {
		return false
	}
	s.timer = 0

	enemies.Append(NewEnemyAtTop(ctx))
	return true
}

// TryActivateBoss clears all enemies and returns a new boss once the score
// reaches the threshold. Returns nil while a boss exists, below the threshold,
// or once the boss of this run has already appeared.
func (s *Spawner) TryActivateBoss(ctx UpdateContext, score int, bossActive bool, enemies *Swarm[Enemy]) *Boss {
	if bossActive || s.activated || score < s.threshold {
		return nil
	}
	if !ctx.Field.Valid() {
		return nil
	}

	s.activated = true
	enemies.Clear()
	return NewBoss(ctx)
}
