package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	loopconfig "github.com/tomz197/danmaku/internal/loop/config"
)

// EnvPrefix prefixes every environment override, e.g. DANMAKU_GAME_BOSS_SCORE.
const EnvPrefix = "DANMAKU"

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config is the configuration shared by every binary.
type Config struct {
	Game  loopconfig.Params `mapstructure:"game"`
	Store StoreConfig       `mapstructure:"store"`
	SSH   SSHConfig         `mapstructure:"ssh"`
	Web   WebConfig         `mapstructure:"web"`
	Audio AudioConfig       `mapstructure:"audio"`
	Log   LogConfig         `mapstructure:"log"`
}

// StoreConfig selects and configures the high score store.
type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	File     string         `mapstructure:"file"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// PostgresConfig configures the PostgreSQL store.
type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// SSHConfig configures the SSH host.
type SSHConfig struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	HostKey string `mapstructure:"host_key"`
}

// WebConfig configures the landing page.
type WebConfig struct {
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	DisplayHost string `mapstructure:"display_host"` // SSH host shown to visitors
}

// AudioConfig configures sound output of the local binaries.
type AudioConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // Empty logs to stderr
}

// setDefaults registers a default for every key so environment overrides
// work without a config file.
func setDefaults(v *viper.Viper) {
	p := loopconfig.Default()
	game := map[string]any{
		"tick_rate":        p.TickRate,
		"duration_ticks":   p.DurationTicks,
		"fire_interval":    p.FireInterval,
		"spawn_interval":   p.SpawnInterval,
		"boss_score":       p.BossScore,
		"boss_max_hp":      p.BossMaxHP,
		"boss_damage":      p.BossDamage,
		"score_enemy":      p.ScoreEnemy,
		"score_boss_hit":   p.ScoreBossHit,
		"score_boss_clear": p.ScoreBossClear,
		"player_size":      p.PlayerSize,
		"player_offset":    p.PlayerOffset,
		"bullet_width":     p.BulletWidth,
		"bullet_height":    p.BulletHeight,
		"bullet_speed":     p.BulletSpeed,
		"enemy_size":       p.EnemySize,
		"enemy_speed":      p.EnemySpeed,
		"enemy_jitter":     p.EnemyJitter,
		"boss_size":        p.BossSize,
		"boss_y":           p.BossY,
		"boss_speed":       p.BossSpeed,
		"key_step":         p.KeyStep,
		"seed":             p.Seed,
	}
	for k, val := range game {
		v.SetDefault("game."+k, val)
	}

	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.file", "danmaku-highscore.json")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.key", "danmakuHighScore")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.table", "danmaku_high_score")

	v.SetDefault("ssh.host", "::")
	v.SetDefault("ssh.port", "2222")
	v.SetDefault("ssh.host_key", "/app/keys/host_key")

	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", "8080")
	v.SetDefault("web.display_host", "your-server.com")

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.6)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads the configuration from path (optional, any format viper
// understands) and applies DANMAKU_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by DANMAKU_CONFIG, if any.
func LoadFromEnv() (*Config, error) {
	return Load(GetEnv(EnvPrefix+"_CONFIG", ""))
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("%w: game: %w", ErrInvalid, err)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.File == "" {
			return fmt.Errorf("%w: store.file is required for the file driver", ErrInvalid)
		}
	case DriverRedis:
		if c.Store.Redis.Addr == "" || c.Store.Redis.Key == "" {
			return fmt.Errorf("%w: store.redis.addr and store.redis.key are required", ErrInvalid)
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("%w: store.postgres.dsn is required", ErrInvalid)
		}
		if !validIdentifier(c.Store.Postgres.Table) {
			return fmt.Errorf("%w: store.postgres.table %q is not a plain identifier", ErrInvalid, c.Store.Postgres.Table)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalid, c.Store.Driver)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume must be within [0, 1], got %g", ErrInvalid, c.Audio.Volume)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// validIdentifier accepts lower-case SQL identifiers made of letters, digits
// and underscores.
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
