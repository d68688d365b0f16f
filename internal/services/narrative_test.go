package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sologm/engine/pkg/narrative"
)

func TestResolveActiveContext(t *testing.T) {
	store := newTestStorage(t)
	svc := NewNarrativeService(store, discardLogger())
	ctx := context.Background()

	// Nothing exists yet
	_, err := svc.ResolveActiveContext(ctx)
	var ncErr *narrative.NoActiveContextError
	require.ErrorAs(t, err, &ncErr)
	assert.Contains(t, ncErr.Error(), "no active game")

	game, err := svc.CreateGame(ctx, "Chain", "testing the chain")
	require.NoError(t, err)

	// Created games are not active until activated
	_, err = svc.ResolveActiveContext(ctx)
	require.ErrorAs(t, err, &ncErr)

	_, err = svc.ActivateGame(ctx, game.ID)
	require.NoError(t, err)

	// Active game, no act
	_, err = svc.ResolveActiveContext(ctx)
	require.ErrorAs(t, err, &ncErr)
	assert.Contains(t, ncErr.Error(), "no active act")

	_, err = svc.CreateAct(ctx, "", nil)
	require.NoError(t, err)

	// Active act, no scene
	_, err = svc.ResolveActiveContext(ctx)
	require.ErrorAs(t, err, &ncErr)
	assert.Contains(t, ncErr.Error(), "no active scene")

	scene, err := svc.CreateScene(ctx, "", "Opening", "it begins")
	require.NoError(t, err)

	ac, err := svc.ResolveActiveContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.ID, ac.Game.ID)
	assert.Equal(t, scene.ID, ac.Scene.ID)
}

func TestCreateActRequiresActiveGame(t *testing.T) {
	store := newTestStorage(t)
	svc := NewNarrativeService(store, discardLogger())

	_, err := svc.CreateAct(context.Background(), "", nil)
	var ncErr *narrative.NoActiveContextError
	require.ErrorAs(t, err, &ncErr)
}

func TestCreateGameValidation(t *testing.T) {
	store := newTestStorage(t)
	svc := NewNarrativeService(store, discardLogger())

	_, err := svc.CreateGame(context.Background(), "", "no name")
	var vErr *narrative.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCompleteScene(t *testing.T) {
	store := newTestStorage(t)
	svc := NewNarrativeService(store, discardLogger())
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "Completion", "")
	require.NoError(t, err)
	_, err = svc.ActivateGame(ctx, game.ID)
	require.NoError(t, err)
	_, err = svc.CreateAct(ctx, "", nil)
	require.NoError(t, err)
	scene, err := svc.CreateScene(ctx, "", "Finale", "")
	require.NoError(t, err)

	completed, err := svc.CompleteScene(ctx, scene.ID)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted())

	// Completing twice is an invalid transition
	_, err = svc.CompleteScene(ctx, scene.ID)
	var vErr *narrative.ValidationError
	require.ErrorAs(t, err, &vErr)

	// A completed scene can still be the active scene
	ac, err := svc.ResolveActiveContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, scene.ID, ac.Scene.ID)
	assert.True(t, ac.Scene.IsCompleted())
}

func TestAddEventUsesActiveScene(t *testing.T) {
	store := newTestStorage(t)
	svc := NewNarrativeService(store, discardLogger())
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "Eventful", "")
	require.NoError(t, err)
	_, err = svc.ActivateGame(ctx, game.ID)
	require.NoError(t, err)
	_, err = svc.CreateAct(ctx, "", nil)
	require.NoError(t, err)
	scene, err := svc.CreateScene(ctx, "", "Here", "")
	require.NoError(t, err)

	// Empty scene id resolves through the active context
	event, err := svc.AddEvent(ctx, "", "something happened", narrative.SourceManual)
	require.NoError(t, err)
	assert.Equal(t, scene.ID, event.SceneID)

	events, err := svc.ListRecentEvents(ctx, scene.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "something happened", events[0].Description)
}

func TestRollDice(t *testing.T) {
	store := newTestStorage(t)
	svc := NewNarrativeService(store, discardLogger())
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "Dicey", "")
	require.NoError(t, err)
	_, err = svc.ActivateGame(ctx, game.ID)
	require.NoError(t, err)
	_, err = svc.CreateAct(ctx, "", nil)
	require.NoError(t, err)
	scene, err := svc.CreateScene(ctx, "", "Table", "")
	require.NoError(t, err)

	roll, err := svc.RollDice(ctx, scene.ID, "4d8+2", "damage")
	require.NoError(t, err)
	assert.Equal(t, "4d8+2", roll.Notation)
	assert.Len(t, roll.Results, 4)
	assert.Equal(t, 2, roll.Modifier)

	sum := roll.Modifier
	for _, r := range roll.Results {
		assert.GreaterOrEqual(t, r, 1)
		assert.LessOrEqual(t, r, 8)
		sum += r
	}
	assert.Equal(t, sum, roll.Total)

	// Bad notation surfaces as a validation error, nothing persisted
	_, err = svc.RollDice(ctx, scene.ID, "d", "")
	var vErr *narrative.ValidationError
	require.ErrorAs(t, err, &vErr)

	rolls, err := svc.ListDiceRolls(ctx, scene.ID, 0)
	require.NoError(t, err)
	assert.Len(t, rolls, 1)
}

func TestActivateActSwitchesScenes(t *testing.T) {
	store := newTestStorage(t)
	svc := NewNarrativeService(store, discardLogger())
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "Switching", "")
	require.NoError(t, err)
	_, err = svc.ActivateGame(ctx, game.ID)
	require.NoError(t, err)

	act1, err := svc.CreateAct(ctx, "", nil)
	require.NoError(t, err)
	scene1, err := svc.CreateScene(ctx, "", "Act One Scene", "")
	require.NoError(t, err)

	_, err = svc.CreateAct(ctx, "", nil)
	require.NoError(t, err)
	_, err = svc.CreateScene(ctx, "", "Act Two Scene", "")
	require.NoError(t, err)

	// Going back to act one restores its scene as the active context
	_, err = svc.ActivateAct(ctx, act1.ID)
	require.NoError(t, err)

	ac, err := svc.ResolveActiveContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, act1.ID, ac.Act.ID)
	assert.Equal(t, scene1.ID, ac.Scene.ID)
}
