package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meltforce/blockplan/internal/plan"
)

const weekPlanColumns = `id, player_id, week, days, total_rpe, created_at`

// GetWeekPlan returns the plan with the given id, or nil if there is none.
func (db *DB) GetWeekPlan(ctx context.Context, id string) (*plan.WeekPlan, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+weekPlanColumns+` FROM week_plans WHERE id = $1`, id)
	p, err := scanWeekPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying week plan %s: %w", id, err)
	}
	return p, nil
}

// UpsertWeekPlan stores p, replacing any plan with the same id. The
// created_at of the first save is kept.
func (db *DB) UpsertWeekPlan(ctx context.Context, p *plan.WeekPlan) (*plan.WeekPlan, error) {
	days, err := json.Marshal(p.Days)
	if err != nil {
		return nil, fmt.Errorf("encoding days: %w", err)
	}
	saved := *p
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO week_plans (id, player_id, week, days, total_rpe, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			player_id = EXCLUDED.player_id,
			week = EXCLUDED.week,
			days = EXCLUDED.days,
			total_rpe = EXCLUDED.total_rpe,
			updated_at = NOW()
		RETURNING created_at
	`, p.ID, p.PlayerID, p.Week, json.RawMessage(days), p.TotalRPE, p.CreatedAt).Scan(&saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting week plan %s: %w", p.ID, err)
	}
	return &saved, nil
}

// DeleteWeekPlan removes a plan and reports whether it existed.
func (db *DB) DeleteWeekPlan(ctx context.Context, id string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM week_plans WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting week plan %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListWeekPlans returns all plans ordered by player, newest week first.
func (db *DB) ListWeekPlans(ctx context.Context) ([]plan.WeekPlan, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+weekPlanColumns+` FROM week_plans ORDER BY player_id, week DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying week plans: %w", err)
	}
	return collectWeekPlans(rows)
}

// ListWeekPlansByPlayer returns a player's plans, newest week first.
func (db *DB) ListWeekPlansByPlayer(ctx context.Context, playerID string) ([]plan.WeekPlan, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+weekPlanColumns+` FROM week_plans WHERE player_id = $1 ORDER BY week DESC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying week plans for %s: %w", playerID, err)
	}
	return collectWeekPlans(rows)
}

func collectWeekPlans(rows pgx.Rows) ([]plan.WeekPlan, error) {
	defer rows.Close()
	result := []plan.WeekPlan{}
	for rows.Next() {
		p, err := scanWeekPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning week plan: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func scanWeekPlan(row pgx.Row) (*plan.WeekPlan, error) {
	var p plan.WeekPlan
	var days []byte
	if err := row.Scan(&p.ID, &p.PlayerID, &p.Week, &days, &p.TotalRPE, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(days, &p.Days); err != nil {
		return nil, fmt.Errorf("decoding days of %s: %w", p.ID, err)
	}
	p.Days = p.Days.Complete()
	return &p, nil
}
