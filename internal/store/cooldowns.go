package store

import (
	"context"
	"fmt"

	"github.com/roach88/mechanics/internal/cooldown"
)

// SaveCooldowns replaces the stored cooldown snapshot with entries.
func (s *Store) SaveCooldowns(ctx context.Context, entries []cooldown.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save cooldowns: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cooldowns`); err != nil {
		return fmt.Errorf("save cooldowns: clear: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cooldowns (key, expires_at_ms) VALUES (?, ?)`,
			e.Key, e.ExpiresAtMillis,
		); err != nil {
			return fmt.Errorf("save cooldown %s: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save cooldowns: commit: %w", err)
	}
	return nil
}

// LoadCooldowns returns the stored snapshot, ordered by key. Entries that
// have since expired are returned too; cooldown.Registry.Restore skips
// them.
func (s *Store) LoadCooldowns(ctx context.Context) ([]cooldown.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, expires_at_ms FROM cooldowns ORDER BY key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query cooldowns: %w", err)
	}
	defer rows.Close()

	out := []cooldown.Entry{}
	for rows.Next() {
		var e cooldown.Entry
		if err := rows.Scan(&e.Key, &e.ExpiresAtMillis); err != nil {
			return nil, fmt.Errorf("scan cooldown: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cooldowns: %w", err)
	}
	return out, nil
}
