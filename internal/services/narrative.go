package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sologm/engine/internal/storage"
	"github.com/sologm/engine/pkg/dice"
	"github.com/sologm/engine/pkg/narrative"
)

// ActiveContext is the resolved chain of active entities: the active
// game, its active act, and that act's active scene.
type ActiveContext struct {
	Game  *narrative.Game  `json:"game"`
	Act   *narrative.Act   `json:"act"`
	Scene *narrative.Scene `json:"scene"`
}

// NarrativeService owns game/act/scene lifecycle, events, and dice
// rolls. Activation chains and uniqueness rules are enforced by the
// store; this layer resolves the active context and validates input.
type NarrativeService struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewNarrativeService(s storage.Storage, logger *slog.Logger) *NarrativeService {
	return &NarrativeService{storage: s, logger: logger}
}

// ResolveActiveContext walks active game -> active act -> active scene.
// Each missing link returns a NoActiveContextError naming what is
// missing, so callers can report exactly where the chain broke.
func (n *NarrativeService) ResolveActiveContext(ctx context.Context) (*ActiveContext, error) {
	game, err := n.storage.GetActiveGame(ctx)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, &narrative.NoActiveContextError{Msg: "no active game"}
	}

	act, err := n.storage.GetActiveAct(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, &narrative.NoActiveContextError{Msg: fmt.Sprintf("game %q has no active act", game.Name)}
	}

	scene, err := n.storage.GetActiveScene(ctx, act.ID)
	if err != nil {
		return nil, err
	}
	if scene == nil {
		return nil, &narrative.NoActiveContextError{Msg: fmt.Sprintf("act %d has no active scene", act.Sequence)}
	}

	return &ActiveContext{Game: game, Act: act, Scene: scene}, nil
}

// resolveSceneID returns sceneID unchanged when set, otherwise the
// active scene from the active context.
func (n *NarrativeService) resolveSceneID(ctx context.Context, sceneID string) (string, error) {
	if sceneID != "" {
		return sceneID, nil
	}
	ac, err := n.ResolveActiveContext(ctx)
	if err != nil {
		return "", err
	}
	return ac.Scene.ID, nil
}

// CreateGame creates a game. The new game is not activated; use
// ActivateGame to switch to it.
func (n *NarrativeService) CreateGame(ctx context.Context, name, description string) (*narrative.Game, error) {
	game, err := narrative.NewGame(name, description)
	if err != nil {
		return nil, err
	}
	if err := n.storage.CreateGame(ctx, game); err != nil {
		return nil, err
	}
	n.logger.Info("Game created", "game_id", game.ID, "name", game.Name)
	return game, nil
}

func (n *NarrativeService) GetGame(ctx context.Context, id string) (*narrative.Game, error) {
	return n.storage.GetGame(ctx, id)
}

func (n *NarrativeService) ListGames(ctx context.Context) ([]narrative.Game, error) {
	return n.storage.ListGames(ctx)
}

// ActivateGame marks the game active. Other games keep their flags;
// the most recently activated one wins active-context resolution.
func (n *NarrativeService) ActivateGame(ctx context.Context, id string) (*narrative.Game, error) {
	game, err := n.storage.ActivateGame(ctx, id)
	if err != nil {
		return nil, err
	}
	n.logger.Info("Game activated", "game_id", game.ID, "name", game.Name)
	return game, nil
}

func (n *NarrativeService) DeleteGame(ctx context.Context, id string) error {
	if err := n.storage.DeleteGame(ctx, id); err != nil {
		return err
	}
	n.logger.Info("Game deleted", "game_id", id)
	return nil
}

// CreateAct creates an act under the given game, or under the active
// game when gameID is empty. The act becomes the game's active act.
func (n *NarrativeService) CreateAct(ctx context.Context, gameID string, title *string) (*narrative.Act, error) {
	if gameID == "" {
		game, err := n.storage.GetActiveGame(ctx)
		if err != nil {
			return nil, err
		}
		if game == nil {
			return nil, &narrative.NoActiveContextError{Msg: "no active game"}
		}
		gameID = game.ID
	}

	act := narrative.NewAct(gameID, title)
	if err := n.storage.CreateAct(ctx, act); err != nil {
		return nil, err
	}
	n.logger.Info("Act created", "act_id", act.ID, "game_id", gameID, "sequence", act.Sequence)
	return act, nil
}

func (n *NarrativeService) GetAct(ctx context.Context, id string) (*narrative.Act, error) {
	return n.storage.GetAct(ctx, id)
}

func (n *NarrativeService) ListActs(ctx context.Context, gameID string) ([]narrative.Act, error) {
	return n.storage.ListActs(ctx, gameID)
}

func (n *NarrativeService) ActivateAct(ctx context.Context, id string) (*narrative.Act, error) {
	act, err := n.storage.ActivateAct(ctx, id)
	if err != nil {
		return nil, err
	}
	n.logger.Info("Act activated", "act_id", act.ID, "game_id", act.GameID)
	return act, nil
}

// CreateScene creates a scene under the given act, or under the active
// act when actID is empty. The scene becomes the act's active scene.
func (n *NarrativeService) CreateScene(ctx context.Context, actID, title, description string) (*narrative.Scene, error) {
	if actID == "" {
		game, err := n.storage.GetActiveGame(ctx)
		if err != nil {
			return nil, err
		}
		if game == nil {
			return nil, &narrative.NoActiveContextError{Msg: "no active game"}
		}
		act, err := n.storage.GetActiveAct(ctx, game.ID)
		if err != nil {
			return nil, err
		}
		if act == nil {
			return nil, &narrative.NoActiveContextError{Msg: fmt.Sprintf("game %q has no active act", game.Name)}
		}
		actID = act.ID
	}

	scene, err := narrative.NewScene(actID, title, description)
	if err != nil {
		return nil, err
	}
	if err := n.storage.CreateScene(ctx, scene); err != nil {
		return nil, err
	}
	n.logger.Info("Scene created", "scene_id", scene.ID, "act_id", actID, "sequence", scene.Sequence)
	return scene, nil
}

func (n *NarrativeService) GetScene(ctx context.Context, id string) (*narrative.Scene, error) {
	return n.storage.GetScene(ctx, id)
}

func (n *NarrativeService) ListScenes(ctx context.Context, actID string) ([]narrative.Scene, error) {
	return n.storage.ListScenes(ctx, actID)
}

func (n *NarrativeService) ActivateScene(ctx context.Context, id string) (*narrative.Scene, error) {
	scene, err := n.storage.ActivateScene(ctx, id)
	if err != nil {
		return nil, err
	}
	n.logger.Info("Scene activated", "scene_id", scene.ID, "act_id", scene.ActID)
	return scene, nil
}

// CompleteScene marks the scene completed. The scene stays active; a
// completed scene remains the act's current scene until another scene
// is created or activated.
func (n *NarrativeService) CompleteScene(ctx context.Context, id string) (*narrative.Scene, error) {
	scene, err := n.storage.GetScene(ctx, id)
	if err != nil {
		return nil, err
	}
	if scene.IsCompleted() {
		return nil, &narrative.ValidationError{Msg: fmt.Sprintf("scene %q is already completed", scene.Title)}
	}

	scene, err = n.storage.SetSceneStatus(ctx, id, narrative.SceneStatusCompleted)
	if err != nil {
		return nil, err
	}
	n.logger.Info("Scene completed", "scene_id", scene.ID)
	return scene, nil
}

// AddEvent records an event in the given scene, or the active scene
// when sceneID is empty.
func (n *NarrativeService) AddEvent(ctx context.Context, sceneID, description string, source narrative.EventSource) (*narrative.Event, error) {
	sceneID, err := n.resolveSceneID(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	event, err := narrative.NewEvent(sceneID, description, source)
	if err != nil {
		return nil, err
	}
	if err := n.storage.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	n.logger.Info("Event added", "event_id", event.ID, "scene_id", sceneID, "source", source)
	return event, nil
}

func (n *NarrativeService) ListRecentEvents(ctx context.Context, sceneID string, limit int) ([]narrative.Event, error) {
	sceneID, err := n.resolveSceneID(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	return n.storage.ListRecentEvents(ctx, sceneID, limit)
}

// RollDice rolls XdY+Z notation and records the result against the
// given scene, or the active scene when sceneID is empty. The roll is
// persisted as a dice roll, not an event; use AddEvent with SourceDice
// to promote a roll into the narrative log.
func (n *NarrativeService) RollDice(ctx context.Context, sceneID, notation, reason string) (*narrative.DiceRoll, error) {
	sceneID, err := n.resolveSceneID(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	roll, err := dice.RollNotation(notation)
	if err != nil {
		return nil, &narrative.ValidationError{Msg: err.Error()}
	}

	record := narrative.NewDiceRoll(sceneID, roll.Notation, roll.Results, roll.Modifier, roll.Total, reason)
	if err := n.storage.CreateDiceRoll(ctx, record); err != nil {
		return nil, err
	}
	n.logger.Info("Dice rolled", "roll_id", record.ID, "scene_id", sceneID, "notation", notation, "total", record.Total)
	return record, nil
}

func (n *NarrativeService) ListDiceRolls(ctx context.Context, sceneID string, limit int) ([]narrative.DiceRoll, error) {
	sceneID, err := n.resolveSceneID(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	return n.storage.ListDiceRolls(ctx, sceneID, limit)
}
