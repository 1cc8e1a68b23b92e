package loop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/danmaku/internal/loop/config"
	"github.com/tomz197/danmaku/internal/object"
)

var testField = object.Playfield{Width: 1000, Height: 1000}

// newTestSession returns a session on a 1000x1000 playfield whose player
// never fires and whose spawner never spawns unless tune says otherwise.
func newTestSession(t *testing.T, tune func(*config.Params)) *Session {
	t.Helper()
	p := config.Default()
	p.Seed = 1
	p.FireInterval = 100000
	p.SpawnInterval = 100000
	if tune != nil {
		tune(&p)
	}
	s, err := NewSession(p, testField, 0)
	require.NoError(t, err)
	return s
}

func placeBullet(s *Session, x, y float64) {
	s.bullets.Append(object.Bullet{X: x, Y: y, W: 12, H: 18, Speed: 15})
}

func placeEnemy(s *Session, x, y float64) {
	s.enemies.Append(object.Enemy{X: x, Y: y, W: 100, H: 100, Speed: 5})
}

func eventsOf(events []Event, typ EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestNewSessionRejectsInvalidParams(t *testing.T) {
	p := config.Default()
	p.SpawnInterval = 0
	_, err := NewSession(p, testField, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewSession(config.Default(), testField, -1)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestStartTransitions(t *testing.T) {
	s := newTestSession(t, nil)
	require.Equal(t, PhaseIdle, s.Phase())

	require.True(t, s.Start())
	assert.Equal(t, PhaseRunning, s.Phase())
	assert.Equal(t, s.Params().DurationTicks, s.TimerTicks())

	started := eventsOf(s.Drain(), EventRunStarted)
	require.Len(t, started, 1)
	assert.Equal(t, s.RunID(), started[0].RunID)

	runID := s.RunID()
	s.Tick()
	assert.False(t, s.Start(), "start while running")
	assert.Equal(t, runID, s.RunID())
	assert.Equal(t, s.Params().DurationTicks-1, s.TimerTicks())
	assert.Empty(t, eventsOf(s.Drain(), EventRunStarted))
}

func TestStartRecreatesEntities(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	placeEnemy(s, 500, 500)
	placeBullet(s, 100, 100)
	s.score = 120
	s.end(PhaseFailed)

	require.True(t, s.Start())
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Empty(t, snap.Bullets)
	assert.Empty(t, snap.Enemies)
	assert.Nil(t, snap.Boss)
	assert.InDelta(t, testField.CenterX(), snap.Player.X, 1e-9)
	assert.Equal(t, s.Params().DurationTicks, snap.TimerTicks)
}

func TestTickIgnoredUnlessRunning(t *testing.T) {
	s := newTestSession(t, nil)
	s.Tick()
	assert.Equal(t, s.Params().DurationTicks, s.TimerTicks())
	assert.Nil(t, s.Drain())
}

func TestTimeoutFails(t *testing.T) {
	const duration = 120
	s := newTestSession(t, func(p *config.Params) {
		p.DurationTicks = duration
	})
	s.Start()
	s.Drain()

	for i := 1; i < duration; i++ {
		s.Tick()
		require.Equal(t, PhaseRunning, s.Phase(), "tick %d", i)
	}
	s.Tick()

	assert.Equal(t, PhaseFailed, s.Phase())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 0, s.TimerTicks())

	ended := eventsOf(s.Drain(), EventRunEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, PhaseFailed, ended[0].Outcome)
	assert.False(t, ended[0].NewHighScore)

	s.Tick()
	assert.Nil(t, s.Drain())
}

func TestTimeoutSkipsStages(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	placeEnemy(s, 500, 500)
	placeBullet(s, 500, 500)
	s.timer = 1

	s.Tick()
	assert.Equal(t, PhaseFailed, s.Phase())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 1, s.enemies.Len())
	assert.InDelta(t, 500.0, s.bullets.At(0).Y, 1e-9)
}

func TestScoreScenarioClears(t *testing.T) {
	s := newTestSession(t, func(p *config.Params) {
		p.BossScore = 50
		p.BossMaxHP = 50
	})
	s.Start()

	for i := 0; i < 5; i++ {
		placeEnemy(s, 100, 500)
		placeBullet(s, 100, 500)
		s.Tick()
		require.Equal(t, (i+1)*10, s.Score())
		require.Equal(t, 0, s.enemies.Len())
	}

	// Score reached the threshold; the next tick activates the boss.
	s.Tick()
	require.NotNil(t, s.boss)

	hits := 0
	for s.Phase() == PhaseRunning {
		require.Less(t, hits, 25)
		placeBullet(s, s.boss.X, s.boss.Y)
		s.Tick()
		hits++
	}

	assert.Equal(t, 25, hits)
	assert.Equal(t, PhaseCleared, s.Phase())
	assert.Equal(t, 675, s.Score())
	assert.Equal(t, 675, s.HighScore())
	assert.Nil(t, s.boss)

	events := s.Drain()
	assert.Len(t, eventsOf(events, EventEnemyDestroyed), 5)
	assert.Len(t, eventsOf(events, EventBossAppeared), 1)
	assert.Len(t, eventsOf(events, EventBossHit), 25)
	assert.Len(t, eventsOf(events, EventBossDefeated), 1)

	ended := eventsOf(events, EventRunEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, PhaseCleared, ended[0].Outcome)
	assert.Equal(t, 675, ended[0].Score)
	assert.True(t, ended[0].NewHighScore)
}

func TestCollisionEnemyBeforeBoss(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	s.boss = object.NewBoss(s.updateContext())
	placeEnemy(s, s.boss.X, s.boss.Y)
	placeBullet(s, s.boss.X, s.boss.Y)

	s.Tick()

	assert.Equal(t, 0, s.enemies.Len())
	assert.Equal(t, 0, s.bullets.Len())
	assert.Equal(t, s.boss.MaxHP, s.boss.HP)
	assert.Equal(t, s.Params().ScoreEnemy, s.Score())
}

func TestBulletKillsOneEnemy(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	placeEnemy(s, 500, 500)
	placeEnemy(s, 510, 500)
	placeBullet(s, 505, 500)

	s.Tick()

	assert.Equal(t, 1, s.enemies.Len())
	assert.Equal(t, 10, s.Score())
	// The later-inserted enemy is tested first.
	assert.InDelta(t, 500.0, s.enemies.At(0).X, 1e-9)
}

func TestEveryOverlappingBulletScores(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	for i := 0; i < 3; i++ {
		placeEnemy(s, float64(100+200*i), 500)
		placeBullet(s, float64(100+200*i), 500)
	}
	placeBullet(s, 900, 100)

	s.Tick()

	assert.Equal(t, 30, s.Score())
	assert.Equal(t, 0, s.enemies.Len())
	require.Equal(t, 1, s.bullets.Len())
	assert.InDelta(t, 900.0, s.bullets.At(0).X, 1e-9)
}

func TestBossDefeatAbortsCollisions(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	s.boss = object.NewBoss(s.updateContext())
	s.boss.HP = 2
	placeBullet(s, s.boss.X, s.boss.Y)
	placeBullet(s, s.boss.X, s.boss.Y)

	s.Tick()

	assert.Equal(t, PhaseCleared, s.Phase())
	assert.Equal(t, 505, s.Score())
	assert.Equal(t, 1, s.bullets.Len())
}

func TestIdempotentTermination(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	s.score = 40
	s.Drain()

	s.end(PhaseFailed)
	s.end(PhaseFailed)
	s.end(PhaseCleared)

	assert.Equal(t, PhaseFailed, s.Phase())
	assert.Equal(t, 40, s.HighScore())
	assert.Len(t, eventsOf(s.Drain(), EventRunEnded), 1)
}

func TestHighScoreMonotonic(t *testing.T) {
	s, err := NewSession(config.Default(), testField, 100)
	require.NoError(t, err)

	runs := []struct {
		score     int
		wantHigh  int
		wantIsNew bool
	}{
		{50, 100, false},
		{100, 100, false},
		{150, 150, true},
		{0, 150, false},
		{151, 151, true},
	}
	for _, r := range runs {
		before := s.HighScore()
		require.True(t, s.Start())
		s.score = r.score
		s.end(PhaseFailed)

		ended := eventsOf(s.Drain(), EventRunEnded)
		require.Len(t, ended, 1)
		assert.GreaterOrEqual(t, s.HighScore(), before)
		assert.Equal(t, r.wantHigh, s.HighScore())
		assert.Equal(t, r.wantIsNew, ended[0].NewHighScore)
		assert.Equal(t, r.wantHigh, ended[0].HighScore)
	}
}

func TestSpawnCadence(t *testing.T) {
	s := newTestSession(t, func(p *config.Params) {
		p.SpawnInterval = 20
	})
	s.Start()

	for tick := 1; tick <= 100; tick++ {
		s.Tick()
		assert.Equal(t, tick/20, s.enemies.Len(), "tick %d", tick)
	}
}

func TestBossActivationExclusive(t *testing.T) {
	s := newTestSession(t, func(p *config.Params) {
		p.SpawnInterval = 5
	})
	s.Start()
	for i := 0; i < 30; i++ {
		s.Tick()
	}
	require.Positive(t, s.enemies.Len())

	s.score = s.Params().BossScore
	s.Tick()
	require.NotNil(t, s.boss)
	boss := s.boss
	assert.Equal(t, 0, s.enemies.Len())

	for i := 0; i < 100; i++ {
		s.Tick()
		assert.Same(t, boss, s.boss)
		assert.Equal(t, 0, s.enemies.Len())
	}

	// Even with the slot empty, the run never gets a second boss.
	s.boss = nil
	for i := 0; i < 50; i++ {
		s.Tick()
		assert.Nil(t, s.boss)
		assert.Equal(t, 0, s.enemies.Len())
	}
	assert.Len(t, eventsOf(s.Drain(), EventBossAppeared), 1)
}

func TestPlayerFiresDuringRun(t *testing.T) {
	s := newTestSession(t, func(p *config.Params) {
		p.FireInterval = 10
	})
	s.Start()
	for i := 0; i < 30; i++ {
		s.Tick()
	}
	assert.Equal(t, 3, s.bullets.Len())
}

func TestBufferedInputAppliedAtTick(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	w := s.player.W

	s.SetPlayerHorizontalPosition(-50)
	assert.InDelta(t, 500.0, s.player.X, 1e-9)
	assert.InDelta(t, w/2, s.PlayerX(), 1e-9)

	s.SetPlayerHorizontalPosition(5000)
	s.Tick()
	assert.InDelta(t, 1000-w/2, s.player.X, 1e-9)

	s.SetPlayerHorizontalPosition(300)
	s.Tick()
	assert.InDelta(t, 300.0, s.player.X, 1e-9)
}

func TestStartDiscardsBufferedInput(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	s.SetPlayerHorizontalPosition(50)
	require.True(t, s.Stop())

	s.Start()
	assert.InDelta(t, 500.0, s.PlayerX(), 1e-9)
	s.Tick()
	assert.InDelta(t, 500.0, s.player.X, 1e-9)
}

func TestResizeDeferredWhileRunning(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()

	s.Resize(500, 400)
	assert.Equal(t, testField, s.Field())

	s.Tick()
	assert.Equal(t, object.Playfield{Width: 500, Height: 400}, s.Field())
	assert.InDelta(t, 30.0, s.player.W, 1e-9)
	assert.InDelta(t, 250.0, s.player.X, 1e-9)
	assert.InDelta(t, 355.0, s.player.Y, 1e-9)
}

func TestResizeImmediateWhenIdle(t *testing.T) {
	s := newTestSession(t, nil)
	s.Resize(200, 100)
	assert.Equal(t, object.Playfield{Width: 200, Height: 100}, s.Field())
}

func TestZeroPlayfieldNeverSpawns(t *testing.T) {
	p := config.Default()
	p.Seed = 1
	s, err := NewSession(p, object.Playfield{}, 0)
	require.NoError(t, err)
	s.Start()

	for i := 0; i < 200; i++ {
		s.Tick()
	}
	assert.Equal(t, 0, s.enemies.Len())
	assert.Equal(t, 0, s.bullets.Len())
	assert.Equal(t, PhaseRunning, s.Phase())
}

func TestStopAndReset(t *testing.T) {
	s := newTestSession(t, nil)
	assert.False(t, s.Stop())
	assert.False(t, s.Reset())

	s.Start()
	s.score = 500
	require.True(t, s.Stop())
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Equal(t, 0, s.HighScore())

	events := s.Drain()
	assert.Len(t, eventsOf(events, EventRunStopped), 1)
	assert.Empty(t, eventsOf(events, EventRunEnded))

	s.Start()
	s.end(PhaseCleared)
	assert.False(t, s.Stop())
	require.True(t, s.Reset())
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	s := newTestSession(t, nil)
	s.Start()
	placeEnemy(s, 100, 100)
	s.boss = object.NewBoss(s.updateContext())

	snap := s.Snapshot()
	snap.Enemies[0].X = 900
	snap.Boss.HP = 1
	snap.Player.X = 1

	assert.InDelta(t, 100.0, s.enemies.At(0).X, 1e-9)
	assert.Equal(t, s.boss.MaxHP, s.boss.HP)
	assert.InDelta(t, 500.0, s.player.X, 1e-9)
	assert.InDelta(t, 30.0, snap.Seconds(), 1e-9)

	hp, maxHP, ok := s.Boss()
	assert.True(t, ok)
	assert.Equal(t, maxHP, hp)
}

func TestObserveHighScore(t *testing.T) {
	s := newTestSession(t, nil)
	s.ObserveHighScore(300)
	s.ObserveHighScore(100)
	assert.Equal(t, 300, s.HighScore())

	s.Start()
	s.score = 200
	s.end(PhaseFailed)
	ended := eventsOf(s.Drain(), EventRunEnded)
	require.Len(t, ended, 1)
	assert.False(t, ended[0].NewHighScore)
}
