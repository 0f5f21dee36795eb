package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DefinitionRecord is one stored definition version.
type DefinitionRecord struct {
	Hash     string
	ItemID   string
	Body     string
	FirstSeq int64
}

// WriteDefinition stores the canonical body of a definition version. The
// first write of a hash wins; firstSeq records the journal position at
// which that version was first loaded.
func (s *Store) WriteDefinition(ctx context.Context, rec DefinitionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO definitions (hash, item_id, body, first_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, rec.Hash, rec.ItemID, rec.Body, rec.FirstSeq)
	if err != nil {
		return fmt.Errorf("write definition %s: %w", rec.ItemID, err)
	}
	return nil
}

// ReadDefinition returns the definition version with hash, or ErrNotFound.
func (s *Store) ReadDefinition(ctx context.Context, hash string) (DefinitionRecord, error) {
	var rec DefinitionRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, item_id, body, first_seq FROM definitions WHERE hash = ?
	`, hash).Scan(&rec.Hash, &rec.ItemID, &rec.Body, &rec.FirstSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return DefinitionRecord{}, fmt.Errorf("definition %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return DefinitionRecord{}, fmt.Errorf("read definition %s: %w", hash, err)
	}
	return rec, nil
}

// DefinitionVersions returns every stored version of itemID, oldest first.
func (s *Store) DefinitionVersions(ctx context.Context, itemID string) ([]DefinitionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, item_id, body, first_seq FROM definitions
		WHERE item_id = ?
		ORDER BY first_seq ASC, hash COLLATE BINARY ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	out := []DefinitionRecord{}
	for rows.Next() {
		var rec DefinitionRecord
		if err := rows.Scan(&rec.Hash, &rec.ItemID, &rec.Body, &rec.FirstSeq); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definitions: %w", err)
	}
	return out, nil
}
