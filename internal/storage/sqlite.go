package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "pewsched/pkg/logx"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS transitions (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	at     TEXT    NOT NULL,
	civil  TEXT    NOT NULL,
	rule   TEXT    NOT NULL,
	active INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS transitions_rule_id ON transitions(rule, id);
`

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(context.Background(), sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	log.Debug("sqlite journal opened", logx.String("path", path))
	return &sqliteStore{db: db, log: log}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendTransition(ctx context.Context, t Transition) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if t.At.IsZero() {
		t.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions(at, civil, rule, active) VALUES(?,?,?,?)`,
		t.At.UTC().Format(time.RFC3339Nano), t.Civil, t.Rule, boolToInt(t.Active),
	)
	return err
}

func (s *sqliteStore) LastStates(ctx context.Context) (map[string]bool, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.rule, t.active FROM transitions t
		JOIN (SELECT rule, MAX(id) AS id FROM transitions GROUP BY rule) last ON last.id = t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var rule string
		var active int
		if err := rows.Scan(&rule, &active); err != nil {
			return nil, err
		}
		out[rule] = active != 0
	}
	return out, rows.Err()
}

func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]Transition, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT at, civil, rule, active FROM transitions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var (
			at     string
			t      Transition
			active int
		)
		if err := rows.Scan(&at, &t.Civil, &t.Rule, &active); err != nil {
			return nil, err
		}
		t.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("transition %q: bad timestamp %q: %w", t.Rule, at, err)
		}
		t.Active = active != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
