package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "modernc.org/sqlite"

	"github.com/meltforce/blockplan/internal/plan"
)

// SQLite is the single-file store. It offers the same methods as DB.
type SQLite struct {
	DB *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path, enables
// WAL and applies the embedded migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	if err := runMigrations("migrations/sqlite", "sqlite://"+path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	return &SQLite{DB: db}, nil
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

// GetWeekPlan returns the plan with the given id, or nil if there is none.
func (s *SQLite) GetWeekPlan(ctx context.Context, id string) (*plan.WeekPlan, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+weekPlanColumns+` FROM week_plans WHERE id = ?`, id)
	p, err := scanSQLiteWeekPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying week plan %s: %w", id, err)
	}
	return p, nil
}

// UpsertWeekPlan stores p, replacing any plan with the same id. The
// created_at of the first save is kept.
func (s *SQLite) UpsertWeekPlan(ctx context.Context, p *plan.WeekPlan) (*plan.WeekPlan, error) {
	days, err := json.Marshal(p.Days)
	if err != nil {
		return nil, fmt.Errorf("encoding days: %w", err)
	}
	now := formatTime(time.Now())
	var created string
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO week_plans (id, player_id, week, days, total_rpe, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			player_id = excluded.player_id,
			week = excluded.week,
			days = excluded.days,
			total_rpe = excluded.total_rpe,
			updated_at = excluded.updated_at
		RETURNING created_at
	`, p.ID, p.PlayerID, p.Week, string(days), p.TotalRPE, formatTime(p.CreatedAt), now).Scan(&created)
	if err != nil {
		return nil, fmt.Errorf("upserting week plan %s: %w", p.ID, err)
	}
	saved := *p
	if saved.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("week plan %s: %w", p.ID, err)
	}
	return &saved, nil
}

// DeleteWeekPlan removes a plan and reports whether it existed.
func (s *SQLite) DeleteWeekPlan(ctx context.Context, id string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM week_plans WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting week plan %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting week plan %s: %w", id, err)
	}
	return n > 0, nil
}

// ListWeekPlans returns all plans ordered by player, newest week first.
func (s *SQLite) ListWeekPlans(ctx context.Context) ([]plan.WeekPlan, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+weekPlanColumns+` FROM week_plans ORDER BY player_id, week DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying week plans: %w", err)
	}
	return collectSQLiteWeekPlans(rows)
}

// ListWeekPlansByPlayer returns a player's plans, newest week first.
func (s *SQLite) ListWeekPlansByPlayer(ctx context.Context, playerID string) ([]plan.WeekPlan, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+weekPlanColumns+` FROM week_plans WHERE player_id = ? ORDER BY week DESC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying week plans for %s: %w", playerID, err)
	}
	return collectSQLiteWeekPlans(rows)
}

// GetPlayerLog returns the log stored under id, or nil if there is none.
func (s *SQLite) GetPlayerLog(ctx context.Context, id string) (*plan.PlayerLog, error) {
	var l plan.PlayerLog
	var entries, updated string
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, entries, updated_at FROM player_logs WHERE id = ?`, id,
	).Scan(&l.ID, &entries, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying player log %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(entries), &l.Entries); err != nil {
		return nil, fmt.Errorf("decoding player log %s: %w", id, err)
	}
	if l.Entries == nil {
		l.Entries = plan.Entries{}
	}
	if l.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("player log %s: %w", id, err)
	}
	return &l, nil
}

// UpsertPlayerLog replaces the whole entry map stored under id.
func (s *SQLite) UpsertPlayerLog(ctx context.Context, id string, entries plan.Entries, updatedAt time.Time) (*plan.PlayerLog, error) {
	if entries == nil {
		entries = plan.Entries{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding entries: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO player_logs (id, entries, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entries = excluded.entries,
			updated_at = excluded.updated_at
	`, id, string(data), formatTime(updatedAt))
	if err != nil {
		return nil, fmt.Errorf("upserting player log %s: %w", id, err)
	}
	return &plan.PlayerLog{ID: id, Entries: entries.Clone(), UpdatedAt: updatedAt.UTC()}, nil
}

func collectSQLiteWeekPlans(rows *sql.Rows) ([]plan.WeekPlan, error) {
	defer rows.Close()
	result := []plan.WeekPlan{}
	for rows.Next() {
		p, err := scanSQLiteWeekPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning week plan: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteWeekPlan(row rowScanner) (*plan.WeekPlan, error) {
	var p plan.WeekPlan
	var days, created string
	if err := row.Scan(&p.ID, &p.PlayerID, &p.Week, &days, &p.TotalRPE, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(days), &p.Days); err != nil {
		return nil, fmt.Errorf("decoding days of %s: %w", p.ID, err)
	}
	p.Days = p.Days.Complete()
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("week plan %s: %w", p.ID, err)
	}
	return &p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
