package highscore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tomz197/danmaku/internal/config"
)

// raiseScript sets KEYS[1] to ARGV[1] only when that is higher.
var raiseScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local score = tonumber(ARGV[1])
if score > current then
	redis.call("SET", KEYS[1], score)
	return 1
end
return 0
`)

// Redis keeps the high score under a single key.
type Redis struct {
	client *redis.Client
	key    string
}

var _ Store = (*Redis)(nil)

// NewRedis connects to Redis and checks the connection.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	return &Redis{client: client, key: cfg.Key}, nil
}

func (r *Redis) Load(ctx context.Context) (int, error) {
	score, err := r.client.Get(ctx, r.key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load high score: %w", err)
	}
	return score, nil
}

func (r *Redis) Save(ctx context.Context, score int) error {
	if err := raiseScript.Run(ctx, r.client, []string{r.key}, score).Err(); err != nil {
		return fmt.Errorf("save high score: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
