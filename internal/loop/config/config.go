// Package config centralizes all tunable game parameters.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidParams is returned when a Params value cannot drive a session.
var ErrInvalidParams = errors.New("invalid game parameters")

// Params holds the simulation tuning. Sizes and speeds are fractions of the
// playfield width (W) or height (H) so they follow the current geometry.
type Params struct {
	TickRate      int `mapstructure:"tick_rate"`      // Ticks per second
	DurationTicks int `mapstructure:"duration_ticks"` // Countdown length
	FireInterval  int `mapstructure:"fire_interval"`  // Ticks between player shots
	SpawnInterval int `mapstructure:"spawn_interval"` // Ticks between enemy spawns

	BossScore  int `mapstructure:"boss_score"`  // Boss appears once score reaches this
	BossMaxHP  int `mapstructure:"boss_max_hp"` // Boss hit points
	BossDamage int `mapstructure:"boss_damage"` // HP removed per bullet

	ScoreEnemy     int `mapstructure:"score_enemy"`
	ScoreBossHit   int `mapstructure:"score_boss_hit"`
	ScoreBossClear int `mapstructure:"score_boss_clear"`

	PlayerSize   float64 `mapstructure:"player_size"`   // W fraction
	PlayerOffset float64 `mapstructure:"player_offset"` // Player y = H - size*offset

	BulletWidth  float64 `mapstructure:"bullet_width"`  // W fraction
	BulletHeight float64 `mapstructure:"bullet_height"` // H fraction
	BulletSpeed  float64 `mapstructure:"bullet_speed"`  // H fraction per tick

	EnemySize   float64 `mapstructure:"enemy_size"`   // W fraction
	EnemySpeed  float64 `mapstructure:"enemy_speed"`  // H fraction per tick
	EnemyJitter float64 `mapstructure:"enemy_jitter"` // H fraction per tick, uniform [0, jitter)

	BossSize  float64 `mapstructure:"boss_size"`  // W fraction
	BossY     float64 `mapstructure:"boss_y"`     // H fraction from the top
	BossSpeed float64 `mapstructure:"boss_speed"` // W fraction per tick

	KeyStep float64 `mapstructure:"key_step"` // W fraction moved per tick by keyboard

	Seed int64 `mapstructure:"seed"` // 0 = time based
}

// Default returns the original arcade tuning.
func Default() Params {
	return Params{
		TickRate:      60,
		DurationTicks: 30 * 60,
		FireInterval:  10,
		SpawnInterval: 20,

		BossScore:  300,
		BossMaxHP:  80,
		BossDamage: 2,

		ScoreEnemy:     10,
		ScoreBossHit:   5,
		ScoreBossClear: 500,

		PlayerSize:   0.06,
		PlayerOffset: 1.5,

		BulletWidth:  0.012,
		BulletHeight: 0.018,
		BulletSpeed:  0.015,

		EnemySize:   0.1,
		EnemySpeed:  0.005,
		EnemyJitter: 0.003,

		BossSize:  0.25,
		BossY:     0.2,
		BossSpeed: 0.003,

		KeyStep: 0.02,
	}
}

// TickDuration returns the wall-clock length of one tick.
func (p Params) TickDuration() time.Duration {
	if p.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(p.TickRate)
}

// Validate checks that every interval, size and speed is usable.
func (p Params) Validate() error {
	positiveInts := []struct {
		name string
		v    int
	}{
		{"tick_rate", p.TickRate},
		{"duration_ticks", p.DurationTicks},
		{"fire_interval", p.FireInterval},
		{"spawn_interval", p.SpawnInterval},
		{"boss_max_hp", p.BossMaxHP},
		{"boss_damage", p.BossDamage},
	}
	for _, f := range positiveInts {
		if f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParams, f.name, f.v)
		}
	}

	positiveFloats := []struct {
		name string
		v    float64
	}{
		{"player_size", p.PlayerSize},
		{"bullet_width", p.BulletWidth},
		{"bullet_height", p.BulletHeight},
		{"bullet_speed", p.BulletSpeed},
		{"enemy_size", p.EnemySize},
		{"enemy_speed", p.EnemySpeed},
		{"boss_size", p.BossSize},
		{"boss_speed", p.BossSpeed},
		{"player_offset", p.PlayerOffset},
		{"key_step", p.KeyStep},
	}
	for _, f := range positiveFloats {
		if f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidParams, f.name, f.v)
		}
	}

	switch {
	case p.BossScore < 0:
		return fmt.Errorf("%w: boss_score must not be negative", ErrInvalidParams)
	case p.EnemyJitter < 0:
		return fmt.Errorf("%w: enemy_jitter must not be negative", ErrInvalidParams)
	case p.ScoreEnemy < 0 || p.ScoreBossHit < 0 || p.ScoreBossClear < 0:
		return fmt.Errorf("%w: scores must not be negative", ErrInvalidParams)
	case p.BossSize >= 1:
		return fmt.Errorf("%w: boss_size must be below 1", ErrInvalidParams)
	case p.BossY < 0 || p.BossY > 1:
		return fmt.Errorf("%w: boss_y must be within [0, 1]", ErrInvalidParams)
	}
	return nil
}

// Terminal client constants.
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS

	// Render area clamp for very large terminals.
	MaxTermWidth  = 160
	MaxTermHeight = 60

	PromptBlinkFrequency   = 2.0  // Hz, title screen prompt blink
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect

	MaxTicksPerFrame = 5 // Catch-up limit after a stalled frame
	LeaderboardSize  = 5 // Entries kept by the hub

	ResultInputDelay     = 0.75 // Seconds before a result screen accepts restart
	NoticeDisplaySeconds = 3.0  // Seconds a hub notice stays on screen
)

// Explosion particles spawned by frontends from destruction events.
const (
	EnemyExplosionParticles = 8
	BossExplosionParticles  = 40
	ParticleSpeed           = 0.15 // W fraction per second
	ParticleLifetime        = 0.6  // Seconds
)

// Inactivity, in seconds, for remote sessions.
const (
	InactivityWarnUser       = 90
	InactivityDisconnectUser = 120
)
