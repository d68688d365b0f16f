package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/cases"

	"github.com/sologm/engine/pkg/narrative"
)

// foldKey normalizes a name or title for case-insensitive uniqueness
// using Unicode case folding.
func foldKey(s string) string {
	return cases.Fold().String(s)
}

type gameRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	NameFold    string `db:"name_fold"`
	Description string `db:"description"`
	IsActive    bool   `db:"is_active"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r gameRow) toModel() *narrative.Game {
	return &narrative.Game{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
}

func (s *SQLiteStorage) CreateGame(ctx context.Context, g *narrative.Game) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM games WHERE name_fold = ?`, foldKey(g.Name))
		if err != nil {
			return fmt.Errorf("failed to check game name: %w", err)
		}
		if count > 0 {
			return &narrative.ValidationError{
				Msg: fmt.Sprintf("a game named %q already exists", g.Name),
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO games (id, name, name_fold, description, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.Name, foldKey(g.Name), g.Description, g.IsActive,
			toMillis(g.CreatedAt), toMillis(g.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStorage) GetGame(ctx context.Context, id string) (*narrative.Game, error) {
	var row gameRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM games WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &narrative.NotFoundError{Entity: "game", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return row.toModel(), nil
}

func (s *SQLiteStorage) ListGames(ctx context.Context) ([]narrative.Game, error) {
	var rows []gameRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM games ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	games := make([]narrative.Game, 0, len(rows))
	for _, r := range rows {
		games = append(games, *r.toModel())
	}
	return games, nil
}

// GetActiveGame returns the most recently activated game, or nil when no
// game is active. Games do not demote each other on activation, so the
// latest updated_at breaks ties.
func (s *SQLiteStorage) GetActiveGame(ctx context.Context) (*narrative.Game, error) {
	var row gameRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM games WHERE is_active = 1 ORDER BY updated_at DESC, id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active game: %w", err)
	}
	return row.toModel(), nil
}

func (s *SQLiteStorage) ActivateGame(ctx context.Context, id string) (*narrative.Game, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE games SET is_active = 1, updated_at = ? WHERE id = ?`,
			toMillis(time.Now()), id)
		if err != nil {
			return fmt.Errorf("failed to activate game: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return &narrative.NotFoundError{Entity: "game", ID: id}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetGame(ctx, id)
}

// DeleteGame removes a game and everything it owns. The cascade is
// issued explicitly, leaf-first, inside one transaction.
func (s *SQLiteStorage) DeleteGame(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM games WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to check game: %w", err)
		}
		if count == 0 {
			return &narrative.NotFoundError{Entity: "game", ID: id}
		}

		stmts := []string{
			`DELETE FROM interpretations WHERE set_id IN (
				SELECT s.id FROM interpretation_sets s
				JOIN scenes sc ON sc.id = s.scene_id
				JOIN acts a ON a.id = sc.act_id
				WHERE a.game_id = ?)`,
			`DELETE FROM interpretation_sets WHERE scene_id IN (
				SELECT sc.id FROM scenes sc JOIN acts a ON a.id = sc.act_id WHERE a.game_id = ?)`,
			`DELETE FROM events WHERE scene_id IN (
				SELECT sc.id FROM scenes sc JOIN acts a ON a.id = sc.act_id WHERE a.game_id = ?)`,
			`DELETE FROM dice_rolls WHERE scene_id IN (
				SELECT sc.id FROM scenes sc JOIN acts a ON a.id = sc.act_id WHERE a.game_id = ?)`,
			`DELETE FROM scenes WHERE act_id IN (SELECT id FROM acts WHERE game_id = ?)`,
			`DELETE FROM acts WHERE game_id = ?`,
			`DELETE FROM games WHERE id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to cascade delete game: %w", err)
			}
		}
		return nil
	})
}
