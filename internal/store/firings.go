package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/mechanics/internal/ir"
)

const firingColumns = `id, seq, at_ms, actor_id, item_id, trigger_kind, executed, actions,
	scheduled, skipped, failed, consumed, definition_hash`

// WriteFiring inserts one firing. Duplicate IDs are ignored.
func (s *Store) WriteFiring(ctx context.Context, f ir.Firing) error {
	return s.WriteFirings(ctx, []ir.Firing{f})
}

// WriteFirings inserts a batch of firings in one transaction. Duplicate
// IDs are ignored.
func (s *Store) WriteFirings(ctx context.Context, firings []ir.Firing) error {
	if len(firings) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write firings: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO firings (`+firingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write firings: prepare: %w", err)
	}
	defer stmt.Close()

	for _, f := range firings {
		actions, err := marshalActions(f.Actions)
		if err != nil {
			return fmt.Errorf("write firing %s: %w", f.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			f.ID,
			f.Seq,
			f.AtMillis,
			f.ActorID,
			f.ItemID,
			string(f.Trigger),
			boolInt(f.Executed),
			actions,
			f.Scheduled,
			f.Skipped,
			f.Failed,
			boolInt(f.Consumed),
			f.DefinitionHash,
		); err != nil {
			return fmt.Errorf("write firing %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write firings: commit: %w", err)
	}
	return nil
}

// ReadFiring returns the firing with id, or ErrNotFound.
func (s *Store) ReadFiring(ctx context.Context, id string) (ir.Firing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+firingColumns+` FROM firings WHERE id = ?`, id)
	f, err := scanFiring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Firing{}, fmt.Errorf("firing %s: %w", id, ErrNotFound)
	}
	return f, err
}

// Filter narrows ReadFirings. Zero fields match everything.
type Filter struct {
	ActorID  string
	ItemID   string
	Trigger  ir.TriggerKind
	AfterSeq int64
	Limit    int
}

// ReadFirings returns matching firings ordered by seq ASC, id ASC.
// It returns an empty slice, not nil, when nothing matches.
func (s *Store) ReadFirings(ctx context.Context, f Filter) ([]ir.Firing, error) {
	var where []string
	var args []any
	if f.ActorID != "" {
		where = append(where, "actor_id = ?")
		args = append(args, f.ActorID)
	}
	if f.ItemID != "" {
		where = append(where, "item_id = ?")
		args = append(args, f.ItemID)
	}
	if f.Trigger != "" {
		where = append(where, "trigger_kind = ?")
		args = append(args, string(f.Trigger))
	}
	if f.AfterSeq > 0 {
		where = append(where, "seq > ?")
		args = append(args, f.AfterSeq)
	}

	query := `SELECT ` + firingColumns + ` FROM firings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	out := []ir.Firing{}
	for rows.Next() {
		fr, err := scanFiring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firings: %w", err)
	}
	return out, nil
}

// MaxSeq returns the highest recorded seq, or 0 for an empty journal.
// Engines resume their logical clock from it.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM firings`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}

// CountFirings returns the number of journaled firings.
func (s *Store) CountFirings(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM firings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count firings: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFiring(row scanner) (ir.Firing, error) {
	var (
		f                  ir.Firing
		trigger, actions   string
		executed, consumed int
	)
	err := row.Scan(
		&f.ID,
		&f.Seq,
		&f.AtMillis,
		&f.ActorID,
		&f.ItemID,
		&trigger,
		&executed,
		&actions,
		&f.Scheduled,
		&f.Skipped,
		&f.Failed,
		&consumed,
		&f.DefinitionHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Firing{}, err
		}
		return ir.Firing{}, fmt.Errorf("scan firing: %w", err)
	}
	f.Trigger = ir.TriggerKind(trigger)
	f.Executed = executed != 0
	f.Consumed = consumed != 0
	if f.Actions, err = unmarshalActions(actions); err != nil {
		return ir.Firing{}, fmt.Errorf("firing %s: %w", f.ID, err)
	}
	return f, nil
}
