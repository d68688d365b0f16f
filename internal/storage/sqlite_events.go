package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sologm/engine/pkg/narrative"
)

type eventRow struct {
	ID               string  `db:"id"`
	SceneID          string  `db:"scene_id"`
	Description      string  `db:"description"`
	Source           string  `db:"source"`
	InterpretationID *string `db:"interpretation_id"`
	CreatedAt        int64   `db:"created_at"`
}

func (r eventRow) toModel() *narrative.Event {
	return &narrative.Event{
		ID:               r.ID,
		SceneID:          r.SceneID,
		Description:      r.Description,
		Source:           narrative.EventSource(r.Source),
		InterpretationID: r.InterpretationID,
		CreatedAt:        fromMillis(r.CreatedAt),
	}
}

func (s *SQLiteStorage) CreateEvent(ctx context.Context, e *narrative.Event) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM scenes WHERE id = ?`, e.SceneID); err != nil {
		return fmt.Errorf("failed to check scene: %w", err)
	}
	if count == 0 {
		return &narrative.NotFoundError{Entity: "scene", ID: e.SceneID}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, scene_id, description, source, interpretation_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.SceneID, e.Description, string(e.Source), e.InterpretationID, toMillis(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// ListRecentEvents returns up to limit events for the scene, newest
// first. A limit of zero or less means no cap.
func (s *SQLiteStorage) ListRecentEvents(ctx context.Context, sceneID string, limit int) ([]narrative.Event, error) {
	query := `SELECT * FROM events WHERE scene_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []any{sceneID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	events := make([]narrative.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, *r.toModel())
	}
	return events, nil
}

type diceRollRow struct {
	ID          string `db:"id"`
	SceneID     string `db:"scene_id"`
	Notation    string `db:"notation"`
	ResultsJSON string `db:"results_json"`
	Modifier    int    `db:"modifier"`
	Total       int    `db:"total"`
	Reason      string `db:"reason"`
	CreatedAt   int64  `db:"created_at"`
}

func (r diceRollRow) toModel() (*narrative.DiceRoll, error) {
	var results []int
	if err := json.Unmarshal([]byte(r.ResultsJSON), &results); err != nil {
		return nil, fmt.Errorf("failed to decode dice results: %w", err)
	}
	return &narrative.DiceRoll{
		ID:        r.ID,
		SceneID:   r.SceneID,
		Notation:  r.Notation,
		Results:   results,
		Modifier:  r.Modifier,
		Total:     r.Total,
		Reason:    r.Reason,
		CreatedAt: fromMillis(r.CreatedAt),
	}, nil
}

func (s *SQLiteStorage) CreateDiceRoll(ctx context.Context, roll *narrative.DiceRoll) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM scenes WHERE id = ?`, roll.SceneID); err != nil {
		return fmt.Errorf("failed to check scene: %w", err)
	}
	if count == 0 {
		return &narrative.NotFoundError{Entity: "scene", ID: roll.SceneID}
	}

	resultsJSON, err := json.Marshal(roll.Results)
	if err != nil {
		return fmt.Errorf("failed to encode dice results: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dice_rolls (id, scene_id, notation, results_json, modifier, total, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		roll.ID, roll.SceneID, roll.Notation, string(resultsJSON),
		roll.Modifier, roll.Total, roll.Reason, toMillis(roll.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert dice roll: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListDiceRolls(ctx context.Context, sceneID string, limit int) ([]narrative.DiceRoll, error) {
	query := `SELECT * FROM dice_rolls WHERE scene_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []any{sceneID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []diceRollRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list dice rolls: %w", err)
	}
	rolls := make([]narrative.DiceRoll, 0, len(rows))
	for _, r := range rows {
		roll, err := r.toModel()
		if err != nil {
			return nil, err
		}
		rolls = append(rolls, *roll)
	}
	return rolls, nil
}
