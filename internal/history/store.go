// Package history persists run summaries in PostgreSQL.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/rvforms/internal/config"
	"github.com/JonMunkholm/rvforms/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultListLimit caps RecentRuns when no limit is given.
const DefaultListLimit = 50

// DBTX is the subset of pgxpool.Pool used by the store.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS rv_runs (
    id          UUID PRIMARY KEY,
    variant     TEXT NOT NULL,
    project     TEXT NOT NULL,
    file_name   TEXT,
    forms       INTEGER NOT NULL DEFAULT 0,
    skipped     INTEGER NOT NULL DEFAULT 0,
    failed      INTEGER NOT NULL DEFAULT 0,
    header_row  INTEGER NOT NULL DEFAULT 0,
    error       TEXT,
    client_ip   TEXT,
    started_at  TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS rv_runs_started_at_idx ON rv_runs (started_at DESC);
`

const insertRun = `
INSERT INTO rv_runs (
    id, variant, project, file_name, forms, skipped, failed,
    header_row, error, client_ip, started_at, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`

const selectRecent = `
SELECT id, variant, project, file_name, forms, skipped, failed,
       header_row, error, client_ip, started_at, duration_ms
FROM rv_runs
ORDER BY started_at DESC
LIMIT $1`

// Store records runs in the rv_runs table. It implements core.RunRecorder.
type Store struct {
	db DBTX
}

// New creates a Store on db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Connect opens a pool for cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the history table if it does not exist.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate run history: %w", err)
	}
	return nil
}

// RecordRun inserts one run. Recording the same run twice is a no-op.
func (s *Store) RecordRun(ctx context.Context, r core.RunSummary) error {
	id, err := toPgUUID(r.RunID)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	_, err = s.db.Exec(ctx, insertRun,
		id,
		string(r.Variant),
		r.Project,
		toPgText(r.FileName),
		int32(r.Forms),
		int32(r.Skipped),
		int32(r.Failed),
		int32(r.HeaderRow),
		toPgText(r.Error),
		toPgText(r.ClientIP),
		toPgTimestamptz(r.StartedAt),
		r.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]core.RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []core.RunSummary
	for rows.Next() {
		var (
			id                          pgtype.UUID
			variant, project            string
			fileName, errText, clientIP pgtype.Text
			forms, skipped, failed, hdr int32
			startedAt                   pgtype.Timestamptz
			durationMS                  int64
		)
		if err := rows.Scan(&id, &variant, &project, &fileName, &forms, &skipped, &failed,
			&hdr, &errText, &clientIP, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		out = append(out, core.RunSummary{
			RunID:      fromPgUUID(id),
			Variant:    core.TemplateVariant(variant),
			Project:    project,
			FileName:   fileName.String,
			Forms:      int(forms),
			Skipped:    int(skipped),
			Failed:     int(failed),
			HeaderRow:  int(hdr),
			Error:      errText.String,
			ClientIP:   clientIP.String,
			StartedAt:  startedAt.Time,
			DurationMS: durationMS,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

func toPgUUID(s string) (pgtype.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("invalid run id %q: %w", s, err)
	}
	return pgtype.UUID{Bytes: u, Valid: true}, nil
}

func fromPgUUID(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// toPgText maps blank strings to NULL.
func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		t = time.Now()
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

var _ core.RunRecorder = (*Store)(nil)
