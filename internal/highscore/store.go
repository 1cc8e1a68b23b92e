// Package highscore persists the best score across sessions.
//
// Stores only ever raise the stored value: saving a lower score is a no-op.
package highscore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomz197/danmaku/internal/config"
)

// ErrUnknownDriver is returned by Open for an unsupported store driver.
var ErrUnknownDriver = errors.New("unknown high score driver")

// Store loads and saves the high score.
type Store interface {
	// Load returns the stored high score, or 0 when none has been saved.
	Load(ctx context.Context) (int, error)
	// Save raises the stored high score to score if it is higher.
	Save(ctx context.Context, score int) error
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemory(0), nil
	case config.DriverFile:
		return NewFile(cfg.File), nil
	case config.DriverRedis:
		return NewRedis(ctx, cfg.Redis)
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Memory keeps the high score in process memory.
type Memory struct {
	mu    sync.Mutex
	score int
}

var _ Store = (*Memory)(nil)

// NewMemory creates a memory store seeded with score.
func NewMemory(score int) *Memory {
	return &Memory{score: score}
}

func (m *Memory) Load(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score, nil
}

func (m *Memory) Save(_ context.Context, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if score > m.score {
		m.score = score
	}
	return nil
}

func (m *Memory) Close() error { return nil }
