package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sologm/engine/internal/storage"
	"github.com/sologm/engine/pkg/narrative"
	"github.com/sologm/engine/pkg/prompts"
)

const (
	// DefaultInterpretationCount is how many interpretations to request
	// when the caller does not specify.
	DefaultInterpretationCount = 3

	// DefaultMaxRetries bounds how many times an attempt that parses to
	// nothing is retried. The total call budget is maxRetries + 1.
	DefaultMaxRetries = 2

	// recentEventLimit caps how many events feed the prompt.
	recentEventLimit = 5
)

// OracleService orchestrates interpretation generation: it builds the
// prompt from scene context, calls the LLM, parses the response, and
// persists the resulting set atomically.
type OracleService struct {
	storage    storage.Storage
	llm        LLMService
	logger     *slog.Logger
	maxRetries int
}

func NewOracleService(s storage.Storage, llm LLMService, logger *slog.Logger) *OracleService {
	return &OracleService{
		storage:    s,
		llm:        llm,
		logger:     logger,
		maxRetries: DefaultMaxRetries,
	}
}

// SetMaxRetries overrides the empty-parse retry bound.
func (o *OracleService) SetMaxRetries(maxRetries int) {
	if maxRetries >= 0 {
		o.maxRetries = maxRetries
	}
}

// GetInterpretations generates a new interpretation set for the scene.
// count of zero or less falls back to DefaultInterpretationCount.
//
// Responses that parse to zero interpretations are retried with a
// stronger prompt, up to maxRetries extra attempts. Backend failures
// are not retried. Nothing is persisted unless an attempt succeeds.
func (o *OracleService) GetInterpretations(ctx context.Context, sceneID, question, oracleResults string, count int) (*narrative.InterpretationSet, error) {
	return o.generate(ctx, sceneID, question, oracleResults, count, nil, 0)
}

// RetryInterpretations re-runs generation for the scene's current set
// with the same question and oracle results, instructing the model not
// to repeat the interpretations the player already saw.
func (o *OracleService) RetryInterpretations(ctx context.Context, sceneID string) (*narrative.InterpretationSet, error) {
	current, err := o.storage.GetCurrentInterpretationSet(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &narrative.NoActiveContextError{Msg: "scene has no current interpretation set to retry"}
	}

	previous := make([]prompts.ParsedInterpretation, 0, len(current.Interpretations))
	for _, interp := range current.Interpretations {
		previous = append(previous, prompts.ParsedInterpretation{
			Title:       interp.Title,
			Description: interp.Description,
		})
	}

	return o.generate(ctx, sceneID, current.Context, current.OracleResults,
		len(current.Interpretations), previous, current.RetryAttempt+1)
}

// GetCurrentInterpretationSet returns the scene's current set, or nil
// when the scene has none.
func (o *OracleService) GetCurrentInterpretationSet(ctx context.Context, sceneID string) (*narrative.InterpretationSet, error) {
	return o.storage.GetCurrentInterpretationSet(ctx, sceneID)
}

// GetInterpretationSet returns a set by id with its interpretations.
func (o *OracleService) GetInterpretationSet(ctx context.Context, id string) (*narrative.InterpretationSet, error) {
	return o.storage.GetInterpretationSet(ctx, id)
}

func (o *OracleService) generate(ctx context.Context, sceneID, question, oracleResults string, count int, previous []prompts.ParsedInterpretation, baseAttempt int) (*narrative.InterpretationSet, error) {
	if question == "" {
		return nil, &narrative.ValidationError{Msg: "question is required"}
	}
	if oracleResults == "" {
		return nil, &narrative.ValidationError{Msg: "oracle results are required"}
	}
	if count <= 0 {
		count = DefaultInterpretationCount
	}

	scene, err := o.storage.GetScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	game, err := o.storage.GetGameForScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	events, err := o.storage.ListRecentEvents(ctx, sceneID, recentEventLimit)
	if err != nil {
		return nil, err
	}
	eventDescriptions := make([]string, 0, len(events))
	for _, e := range events {
		eventDescriptions = append(eventDescriptions, e.Description)
	}

	var parsed []prompts.ParsedInterpretation
	attempt := baseAttempt
	for try := 0; try <= o.maxRetries; try++ {
		attempt = baseAttempt + try
		prompt := prompts.BuildInterpretationPrompt(
			game.Description, scene.Description, eventDescriptions,
			question, oracleResults, count, previous, attempt)

		response, err := o.llm.Generate(ctx, prompt)
		if err != nil {
			return nil, &narrative.OracleError{
				Msg: "interpretation generation failed",
				Err: &narrative.BackendError{Err: err},
			}
		}

		parsed = prompts.ParseInterpretations(response)
		if len(parsed) > 0 {
			break
		}

		o.logger.Warn("Response parsed to no interpretations",
			"scene_id", sceneID,
			"attempt", attempt,
			"response_length", len(response))
	}

	if len(parsed) == 0 {
		return nil, &narrative.OracleError{
			Msg: fmt.Sprintf("no interpretations parsed after %d attempts", o.maxRetries+1),
		}
	}

	set := narrative.NewInterpretationSet(sceneID, question, oracleResults, attempt)
	for _, p := range parsed {
		set.Interpretations = append(set.Interpretations, *narrative.NewInterpretation(set.ID, p.Title, p.Description))
	}

	if err := o.storage.CreateInterpretationSet(ctx, set); err != nil {
		return nil, err
	}

	o.logger.Info("Interpretation set created",
		"set_id", set.ID,
		"scene_id", sceneID,
		"interpretations", len(set.Interpretations),
		"retry_attempt", set.RetryAttempt)
	return set, nil
}

// SelectInterpretation marks the interpretation selected and, when
// addEvent is set, records a matching event in the set's scene.
// Selection is additive: selecting the same interpretation twice yields
// two events, and selecting a sibling never unselects the first choice.
func (o *OracleService) SelectInterpretation(ctx context.Context, setID, interpretationID string, addEvent bool) (*narrative.Interpretation, *narrative.Event, error) {
	set, err := o.storage.GetInterpretationSet(ctx, setID)
	if err != nil {
		return nil, nil, err
	}

	interp, err := o.storage.GetInterpretation(ctx, interpretationID)
	if err != nil {
		return nil, nil, err
	}
	if interp.SetID != set.ID {
		return nil, nil, &narrative.NotFoundError{Entity: "interpretation", ID: interpretationID}
	}

	if err := o.storage.MarkInterpretationSelected(ctx, interpretationID); err != nil {
		return nil, nil, err
	}
	interp.IsSelected = true

	if !addEvent {
		o.logger.Info("Interpretation selected",
			"set_id", setID,
			"interpretation_id", interpretationID)
		return interp, nil, nil
	}

	// The description embeds the title so the event log stays readable
	// even after the interpretation set is cascade-deleted.
	event, err := narrative.NewEvent(set.SceneID,
		fmt.Sprintf("%s: %s", interp.Title, interp.Description),
		narrative.SourceOracle)
	if err != nil {
		return nil, nil, err
	}
	event.InterpretationID = &interp.ID
	if err := o.storage.CreateEvent(ctx, event); err != nil {
		return nil, nil, err
	}

	o.logger.Info("Interpretation selected",
		"set_id", setID,
		"interpretation_id", interpretationID,
		"event_id", event.ID)
	return interp, event, nil
}
