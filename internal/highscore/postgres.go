package highscore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/tomz197/danmaku/internal/config"
)

// Postgres keeps the high score in a single-row table.
type Postgres struct {
	db    *sql.DB
	table string
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects to PostgreSQL and creates the table if needed.
// cfg.Table must already be validated as a plain identifier.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{db: db, table: cfg.Table}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         SMALLINT PRIMARY KEY CHECK (id = 1),
			score      INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, p.table)
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", p.table, err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) (int, error) {
	var score int
	err := p.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT score FROM %s WHERE id = 1`, p.table)).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load high score: %w", err)
	}
	return score, nil
}

func (p *Postgres) Save(ctx context.Context, score int) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (id, score) VALUES (1, $1)
		ON CONFLICT (id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = now()
		WHERE %[1]s.score < EXCLUDED.score`, p.table)
	if _, err := p.db.ExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("save high score: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
