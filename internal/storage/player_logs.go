package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/meltforce/blockplan/internal/plan"
)

// GetPlayerLog returns the log stored under id, or nil if there is none.
func (db *DB) GetPlayerLog(ctx context.Context, id string) (*plan.PlayerLog, error) {
	var l plan.PlayerLog
	var entries []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT id, entries, updated_at FROM player_logs WHERE id = $1`, id,
	).Scan(&l.ID, &entries, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying player log %s: %w", id, err)
	}
	if err := json.Unmarshal(entries, &l.Entries); err != nil {
		return nil, fmt.Errorf("decoding player log %s: %w", id, err)
	}
	if l.Entries == nil {
		l.Entries = plan.Entries{}
	}
	return &l, nil
}

// UpsertPlayerLog replaces the whole entry map stored under id.
func (db *DB) UpsertPlayerLog(ctx context.Context, id string, entries plan.Entries, updatedAt time.Time) (*plan.PlayerLog, error) {
	if entries == nil {
		entries = plan.Entries{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding entries: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO player_logs (id, entries, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			entries = EXCLUDED.entries,
			updated_at = EXCLUDED.updated_at
	`, id, json.RawMessage(data), updatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting player log %s: %w", id, err)
	}
	return &plan.PlayerLog{ID: id, Entries: entries.Clone(), UpdatedAt: updatedAt}, nil
}
