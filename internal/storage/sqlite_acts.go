package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sologm/engine/pkg/narrative"
)

type actRow struct {
	ID        string  `db:"id"`
	GameID    string  `db:"game_id"`
	Title     *string `db:"title"`
	Sequence  int     `db:"sequence"`
	IsActive  bool    `db:"is_active"`
	CreatedAt int64   `db:"created_at"`
	UpdatedAt int64   `db:"updated_at"`
}

func (r actRow) toModel() *narrative.Act {
	return &narrative.Act{
		ID:        r.ID,
		GameID:    r.GameID,
		Title:     r.Title,
		Sequence:  r.Sequence,
		IsActive:  r.IsActive,
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
}

// CreateAct assigns the next sequence number within the game, demotes
// the game's previously active act, and inserts the new act as active.
// All of it happens in one transaction.
func (s *SQLiteStorage) CreateAct(ctx context.Context, a *narrative.Act) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM games WHERE id = ?`, a.GameID); err != nil {
			return fmt.Errorf("failed to check game: %w", err)
		}
		if count == 0 {
			return &narrative.NotFoundError{Entity: "game", ID: a.GameID}
		}

		if err := tx.GetContext(ctx, &a.Sequence,
			`SELECT COALESCE(MAX(sequence), 0) + 1 FROM acts WHERE game_id = ?`, a.GameID); err != nil {
			return fmt.Errorf("failed to compute act sequence: %w", err)
		}

		now := toMillis(time.Now())
		if _, err := tx.ExecContext(ctx,
			`UPDATE acts SET is_active = 0, updated_at = ? WHERE game_id = ? AND is_active = 1`,
			now, a.GameID); err != nil {
			return fmt.Errorf("failed to demote active act: %w", err)
		}

		a.IsActive = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO acts (id, game_id, title, sequence, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 1, ?, ?)`,
			a.ID, a.GameID, a.Title, a.Sequence, toMillis(a.CreatedAt), toMillis(a.UpdatedAt)); err != nil {
			return fmt.Errorf("failed to insert act: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStorage) GetAct(ctx context.Context, id string) (*narrative.Act, error) {
	var row actRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM acts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &narrative.NotFoundError{Entity: "act", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load act: %w", err)
	}
	return row.toModel(), nil
}

func (s *SQLiteStorage) ListActs(ctx context.Context, gameID string) ([]narrative.Act, error) {
	var rows []actRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM acts WHERE game_id = ? ORDER BY sequence`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list acts: %w", err)
	}
	acts := make([]narrative.Act, 0, len(rows))
	for _, r := range rows {
		acts = append(acts, *r.toModel())
	}
	return acts, nil
}

func (s *SQLiteStorage) GetActiveAct(ctx context.Context, gameID string) (*narrative.Act, error) {
	var row actRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM acts WHERE game_id = ? AND is_active = 1`, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active act: %w", err)
	}
	return row.toModel(), nil
}

// ActivateAct promotes the act and demotes its siblings atomically.
func (s *SQLiteStorage) ActivateAct(ctx context.Context, id string) (*narrative.Act, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var gameID string
		err := tx.GetContext(ctx, &gameID, `SELECT game_id FROM acts WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return &narrative.NotFoundError{Entity: "act", ID: id}
		}
		if err != nil {
			return fmt.Errorf("failed to load act: %w", err)
		}

		now := toMillis(time.Now())
		if _, err := tx.ExecContext(ctx,
			`UPDATE acts SET is_active = 0, updated_at = ? WHERE game_id = ? AND is_active = 1 AND id != ?`,
			now, gameID, id); err != nil {
			return fmt.Errorf("failed to demote active act: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE acts SET is_active = 1, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return fmt.Errorf("failed to promote act: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetAct(ctx, id)
}
