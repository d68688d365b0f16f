package storage

import (
	"context"

	"github.com/sologm/engine/pkg/narrative"
)

// Storage defines the persistence operations for the narrative store.
// Implementations must make every demote-old/promote-new flag flip a
// single transaction so a reader never observes zero or two active
// holders, and must roll back fully on any error.
//
// Get* methods return *narrative.NotFoundError for missing ids. The
// GetActive*/GetCurrent* lookups return (nil, nil) when no row holds
// the flag, mirroring the "or none" contract.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Games
	CreateGame(ctx context.Context, g *narrative.Game) error
	GetGame(ctx context.Context, id string) (*narrative.Game, error)
	ListGames(ctx context.Context) ([]narrative.Game, error)
	GetActiveGame(ctx context.Context) (*narrative.Game, error)
	ActivateGame(ctx context.Context, id string) (*narrative.Game, error)
	DeleteGame(ctx context.Context, id string) error

	// Acts
	CreateAct(ctx context.Context, a *narrative.Act) error
	GetAct(ctx context.Context, id string) (*narrative.Act, error)
	ListActs(ctx context.Context, gameID string) ([]narrative.Act, error)
	GetActiveAct(ctx context.Context, gameID string) (*narrative.Act, error)
	ActivateAct(ctx context.Context, id string) (*narrative.Act, error)

	// Scenes
	CreateScene(ctx context.Context, s *narrative.Scene) error
	GetScene(ctx context.Context, id string) (*narrative.Scene, error)
	ListScenes(ctx context.Context, actID string) ([]narrative.Scene, error)
	GetActiveScene(ctx context.Context, actID string) (*narrative.Scene, error)
	ActivateScene(ctx context.Context, id string) (*narrative.Scene, error)
	SetSceneStatus(ctx context.Context, id string, status narrative.SceneStatus) (*narrative.Scene, error)

	// Derived ownership lookup: scene -> act -> game.
	GetGameForScene(ctx context.Context, sceneID string) (*narrative.Game, error)

	// Events
	CreateEvent(ctx context.Context, e *narrative.Event) error
	ListRecentEvents(ctx context.Context, sceneID string, limit int) ([]narrative.Event, error)

	// Dice rolls
	CreateDiceRoll(ctx context.Context, r *narrative.DiceRoll) error
	ListDiceRolls(ctx context.Context, sceneID string, limit int) ([]narrative.DiceRoll, error)

	// Oracle interpretation sets. CreateInterpretationSet persists the
	// set and its Interpretations as one batch and demotes the scene's
	// previous current set in the same transaction.
	CreateInterpretationSet(ctx context.Context, set *narrative.InterpretationSet) error
	GetInterpretationSet(ctx context.Context, id string) (*narrative.InterpretationSet, error)
	GetCurrentInterpretationSet(ctx context.Context, sceneID string) (*narrative.InterpretationSet, error)
	GetInterpretation(ctx context.Context, id string) (*narrative.Interpretation, error)
	MarkInterpretationSelected(ctx context.Context, id string) error
}
