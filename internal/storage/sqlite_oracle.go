package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sologm/engine/pkg/narrative"
)

type interpretationSetRow struct {
	ID            string `db:"id"`
	SceneID       string `db:"scene_id"`
	Context       string `db:"context"`
	OracleResults string `db:"oracle_results"`
	RetryAttempt  int    `db:"retry_attempt"`
	IsCurrent     bool   `db:"is_current"`
	CreatedAt     int64  `db:"created_at"`
}

func (r interpretationSetRow) toModel() *narrative.InterpretationSet {
	return &narrative.InterpretationSet{
		ID:            r.ID,
		SceneID:       r.SceneID,
		Context:       r.Context,
		OracleResults: r.OracleResults,
		RetryAttempt:  r.RetryAttempt,
		IsCurrent:     r.IsCurrent,
		CreatedAt:     fromMillis(r.CreatedAt),
	}
}

type interpretationRow struct {
	ID          string `db:"id"`
	SetID       string `db:"set_id"`
	Position    int    `db:"position"`
	Title       string `db:"title"`
	Description string `db:"description"`
	IsSelected  bool   `db:"is_selected"`
	CreatedAt   int64  `db:"created_at"`
}

func (r interpretationRow) toModel() *narrative.Interpretation {
	return &narrative.Interpretation{
		ID:          r.ID,
		SetID:       r.SetID,
		Title:       r.Title,
		Description: r.Description,
		IsSelected:  r.IsSelected,
		CreatedAt:   fromMillis(r.CreatedAt),
	}
}

// CreateInterpretationSet inserts the set and all of its interpretations
// and demotes the scene's previous current set, in one transaction. A
// partial set is never visible to readers.
func (s *SQLiteStorage) CreateInterpretationSet(ctx context.Context, set *narrative.InterpretationSet) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM scenes WHERE id = ?`, set.SceneID); err != nil {
			return fmt.Errorf("failed to check scene: %w", err)
		}
		if count == 0 {
			return &narrative.NotFoundError{Entity: "scene", ID: set.SceneID}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE interpretation_sets SET is_current = 0 WHERE scene_id = ? AND is_current = 1`,
			set.SceneID); err != nil {
			return fmt.Errorf("failed to demote current interpretation set: %w", err)
		}

		set.IsCurrent = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO interpretation_sets (id, scene_id, context, oracle_results, retry_attempt, is_current, created_at)
			 VALUES (?, ?, ?, ?, ?, 1, ?)`,
			set.ID, set.SceneID, set.Context, set.OracleResults,
			set.RetryAttempt, toMillis(set.CreatedAt)); err != nil {
			return fmt.Errorf("failed to insert interpretation set: %w", err)
		}

		for i, interp := range set.Interpretations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO interpretations (id, set_id, position, title, description, is_selected, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				interp.ID, set.ID, i, interp.Title, interp.Description,
				interp.IsSelected, toMillis(interp.CreatedAt)); err != nil {
				return fmt.Errorf("failed to insert interpretation: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStorage) GetInterpretationSet(ctx context.Context, id string) (*narrative.InterpretationSet, error) {
	var row interpretationSetRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM interpretation_sets WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &narrative.NotFoundError{Entity: "interpretation set", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load interpretation set: %w", err)
	}

	set := row.toModel()
	if err := s.loadInterpretations(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *SQLiteStorage) GetCurrentInterpretationSet(ctx context.Context, sceneID string) (*narrative.InterpretationSet, error) {
	var row interpretationSetRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM interpretation_sets WHERE scene_id = ? AND is_current = 1`, sceneID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current interpretation set: %w", err)
	}

	set := row.toModel()
	if err := s.loadInterpretations(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *SQLiteStorage) loadInterpretations(ctx context.Context, set *narrative.InterpretationSet) error {
	var rows []interpretationRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM interpretations WHERE set_id = ? ORDER BY position`, set.ID)
	if err != nil {
		return fmt.Errorf("failed to load interpretations: %w", err)
	}
	set.Interpretations = make([]narrative.Interpretation, 0, len(rows))
	for _, r := range rows {
		set.Interpretations = append(set.Interpretations, *r.toModel())
	}
	return nil
}

func (s *SQLiteStorage) GetInterpretation(ctx context.Context, id string) (*narrative.Interpretation, error) {
	var row interpretationRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM interpretations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &narrative.NotFoundError{Entity: "interpretation", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load interpretation: %w", err)
	}
	return row.toModel(), nil
}

// MarkInterpretationSelected records that the player chose this
// interpretation. The flag is a historical marker, not an exclusive
// one: selecting twice, or selecting siblings, all stick.
func (s *SQLiteStorage) MarkInterpretationSelected(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE interpretations SET is_selected = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark interpretation selected: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return &narrative.NotFoundError{Entity: "interpretation", ID: id}
	}
	return nil
}
