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

type sceneRow struct {
	ID          string `db:"id"`
	ActID       string `db:"act_id"`
	Title       string `db:"title"`
	TitleFold   string `db:"title_fold"`
	Description string `db:"description"`
	Status      string `db:"status"`
	Sequence    int    `db:"sequence"`
	IsActive    bool   `db:"is_active"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r sceneRow) toModel() *narrative.Scene {
	return &narrative.Scene{
		ID:          r.ID,
		ActID:       r.ActID,
		Title:       r.Title,
		Description: r.Description,
		Status:      narrative.SceneStatus(r.Status),
		Sequence:    r.Sequence,
		IsActive:    r.IsActive,
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
}

// CreateScene assigns the next sequence number within the act, enforces
// case-insensitive title uniqueness across the owning game, demotes the
// act's previously active scene, and inserts the new scene as active.
func (s *SQLiteStorage) CreateScene(ctx context.Context, sc *narrative.Scene) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var gameID string
		err := tx.GetContext(ctx, &gameID, `SELECT game_id FROM acts WHERE id = ?`, sc.ActID)
		if errors.Is(err, sql.ErrNoRows) {
			return &narrative.NotFoundError{Entity: "act", ID: sc.ActID}
		}
		if err != nil {
			return fmt.Errorf("failed to check act: %w", err)
		}

		var count int
		err = tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM scenes sc
			 JOIN acts a ON a.id = sc.act_id
			 WHERE a.game_id = ? AND sc.title_fold = ?`,
			gameID, foldKey(sc.Title))
		if err != nil {
			return fmt.Errorf("failed to check scene title: %w", err)
		}
		if count > 0 {
			return &narrative.ValidationError{
				Msg: fmt.Sprintf("a scene titled %q already exists in this game", sc.Title),
			}
		}

		if err := tx.GetContext(ctx, &sc.Sequence,
			`SELECT COALESCE(MAX(sequence), 0) + 1 FROM scenes WHERE act_id = ?`, sc.ActID); err != nil {
			return fmt.Errorf("failed to compute scene sequence: %w", err)
		}

		now := toMillis(time.Now())
		if _, err := tx.ExecContext(ctx,
			`UPDATE scenes SET is_active = 0, updated_at = ? WHERE act_id = ? AND is_active = 1`,
			now, sc.ActID); err != nil {
			return fmt.Errorf("failed to demote active scene: %w", err)
		}

		sc.IsActive = true
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scenes (id, act_id, title, title_fold, description, status, sequence, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			sc.ID, sc.ActID, sc.Title, foldKey(sc.Title), sc.Description, string(sc.Status),
			sc.Sequence, toMillis(sc.CreatedAt), toMillis(sc.UpdatedAt)); err != nil {
			return fmt.Errorf("failed to insert scene: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStorage) GetScene(ctx context.Context, id string) (*narrative.Scene, error) {
	var row sceneRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM scenes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &narrative.NotFoundError{Entity: "scene", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	return row.toModel(), nil
}

func (s *SQLiteStorage) ListScenes(ctx context.Context, actID string) ([]narrative.Scene, error) {
	var rows []sceneRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM scenes WHERE act_id = ? ORDER BY sequence`, actID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	scenes := make([]narrative.Scene, 0, len(rows))
	for _, r := range rows {
		scenes = append(scenes, *r.toModel())
	}
	return scenes, nil
}

func (s *SQLiteStorage) GetActiveScene(ctx context.Context, actID string) (*narrative.Scene, error) {
	var row sceneRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM scenes WHERE act_id = ? AND is_active = 1`, actID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active scene: %w", err)
	}
	return row.toModel(), nil
}

// ActivateScene promotes the scene and demotes its siblings atomically.
// Completed scenes may be reactivated; status is untouched.
func (s *SQLiteStorage) ActivateScene(ctx context.Context, id string) (*narrative.Scene, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var actID string
		err := tx.GetContext(ctx, &actID, `SELECT act_id FROM scenes WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return &narrative.NotFoundError{Entity: "scene", ID: id}
		}
		if err != nil {
			return fmt.Errorf("failed to load scene: %w", err)
		}

		now := toMillis(time.Now())
		if _, err := tx.ExecContext(ctx,
			`UPDATE scenes SET is_active = 0, updated_at = ? WHERE act_id = ? AND is_active = 1 AND id != ?`,
			now, actID, id); err != nil {
			return fmt.Errorf("failed to demote active scene: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE scenes SET is_active = 1, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return fmt.Errorf("failed to promote scene: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetScene(ctx, id)
}

func (s *SQLiteStorage) SetSceneStatus(ctx context.Context, id string, status narrative.SceneStatus) (*narrative.Scene, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scenes SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toMillis(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update scene status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return nil, &narrative.NotFoundError{Entity: "scene", ID: id}
	}
	return s.GetScene(ctx, id)
}

// GetGameForScene walks scene -> act -> game.
func (s *SQLiteStorage) GetGameForScene(ctx context.Context, sceneID string) (*narrative.Game, error) {
	var row gameRow
	err := s.db.GetContext(ctx, &row,
		`SELECT g.* FROM games g
		 JOIN acts a ON a.game_id = g.id
		 JOIN scenes sc ON sc.act_id = a.id
		 WHERE sc.id = ?`, sceneID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &narrative.NotFoundError{Entity: "scene", ID: sceneID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game for scene: %w", err)
	}
	return row.toModel(), nil
}
