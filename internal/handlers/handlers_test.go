package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sologm/engine/internal/services"
	"github.com/sologm/engine/internal/storage"
	"github.com/sologm/engine/pkg/narrative"
)

func newTestServer(t *testing.T) (*http.ServeMux, *services.MockLLMAPI) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewSQLiteStorage(":memory:", logger)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	mock := services.NewMockLLMAPI()
	narrativeService := services.NewNarrativeService(store, logger)
	oracleService := services.NewOracleService(store, mock, logger)

	mux := http.NewServeMux()
	mux.Handle("/health", NewHealthHandler(store, mock, "mock-model", logger))

	contextHandler := NewContextHandler(narrativeService, logger)
	mux.HandleFunc("GET /v1/context", contextHandler.Get)

	gamesHandler := NewGamesHandler(narrativeService, logger)
	mux.HandleFunc("POST /v1/games", gamesHandler.Create)
	mux.HandleFunc("GET /v1/games", gamesHandler.List)
	mux.HandleFunc("GET /v1/games/{id}", gamesHandler.Get)
	mux.HandleFunc("DELETE /v1/games/{id}", gamesHandler.Delete)
	mux.HandleFunc("POST /v1/games/{id}/activate", gamesHandler.Activate)
	mux.HandleFunc("POST /v1/games/{id}/acts", gamesHandler.CreateAct)
	mux.HandleFunc("GET /v1/games/{id}/acts", gamesHandler.ListActs)

	actsHandler := NewActsHandler(narrativeService, logger)
	mux.HandleFunc("POST /v1/acts/{id}/scenes", actsHandler.CreateScene)

	scenesHandler := NewScenesHandler(narrativeService, logger)
	mux.HandleFunc("POST /v1/scenes/{id}/complete", scenesHandler.Complete)

	eventsHandler := NewEventsHandler(narrativeService, logger)
	mux.HandleFunc("POST /v1/scenes/{id}/events", eventsHandler.AddEvent)
	mux.HandleFunc("GET /v1/scenes/{id}/events", eventsHandler.ListEvents)
	mux.HandleFunc("POST /v1/scenes/{id}/rolls", eventsHandler.RollDice)

	oracleHandler := NewOracleHandler(oracleService, logger)
	mux.HandleFunc("POST /v1/scenes/{id}/interpretations", oracleHandler.Interpret)
	mux.HandleFunc("GET /v1/scenes/{id}/interpretations/current", oracleHandler.Current)
	mux.HandleFunc("POST /v1/interpretation-sets/{id}/select", oracleHandler.Select)

	return mux, mock
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, reqBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if out != nil && w.Code < 400 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w
}

// seedActiveScene builds game -> act -> scene over the API and returns
// their ids.
func seedActiveScene(t *testing.T, mux *http.ServeMux) (gameID, actID, sceneID string) {
	t.Helper()

	var game narrative.Game
	w := doJSON(t, mux, "POST", "/v1/games", map[string]string{"name": "Handler Test"}, &game)
	if w.Code != http.StatusCreated {
		t.Fatalf("create game: status %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, mux, "POST", "/v1/games/"+game.ID+"/activate", map[string]string{}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("activate game: status %d", w.Code)
	}

	var act narrative.Act
	w = doJSON(t, mux, "POST", "/v1/games/"+game.ID+"/acts", map[string]interface{}{"title": nil}, &act)
	if w.Code != http.StatusCreated {
		t.Fatalf("create act: status %d: %s", w.Code, w.Body.String())
	}

	var scene narrative.Scene
	w = doJSON(t, mux, "POST", "/v1/acts/"+act.ID+"/scenes", map[string]string{"title": "Opening"}, &scene)
	if w.Code != http.StatusCreated {
		t.Fatalf("create scene: status %d: %s", w.Code, w.Body.String())
	}

	return game.ID, act.ID, scene.ID
}

func TestHealth(t *testing.T) {
	mux, _ := newTestServer(t)
	w := doJSON(t, mux, "GET", "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
}

func TestCreateGame(t *testing.T) {
	mux, _ := newTestServer(t)

	var game narrative.Game
	w := doJSON(t, mux, "POST", "/v1/games", map[string]string{"name": "New Game", "description": "d"}, &game)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if game.Name != "New Game" || game.ID == "" {
		t.Errorf("unexpected game: %+v", game)
	}

	// Duplicate name -> 400
	w = doJSON(t, mux, "POST", "/v1/games", map[string]string{"name": "new game"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate name, got %d", w.Code)
	}

	// Empty name -> 400
	w = doJSON(t, mux, "POST", "/v1/games", map[string]string{"name": ""}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty name, got %d", w.Code)
	}
}

func TestGetGameNotFound(t *testing.T) {
	mux, _ := newTestServer(t)
	w := doJSON(t, mux, "GET", "/v1/games/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestContextConflictWhenEmpty(t *testing.T) {
	mux, _ := newTestServer(t)
	w := doJSON(t, mux, "GET", "/v1/context", nil, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 with no active game, got %d", w.Code)
	}
}

func TestContextResolved(t *testing.T) {
	mux, _ := newTestServer(t)
	gameID, actID, sceneID := seedActiveScene(t, mux)

	var ac struct {
		Game  narrative.Game  `json:"game"`
		Act   narrative.Act   `json:"act"`
		Scene narrative.Scene `json:"scene"`
	}
	w := doJSON(t, mux, "GET", "/v1/context", nil, &ac)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ac.Game.ID != gameID || ac.Act.ID != actID || ac.Scene.ID != sceneID {
		t.Errorf("unexpected context: %+v", ac)
	}
}

func TestAddEventAndList(t *testing.T) {
	mux, _ := newTestServer(t)
	_, _, sceneID := seedActiveScene(t, mux)

	var event narrative.Event
	w := doJSON(t, mux, "POST", "/v1/scenes/"+sceneID+"/events",
		map[string]string{"description": "a stranger arrives"}, &event)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if event.Source != narrative.SourceManual {
		t.Errorf("expected manual source, got %q", event.Source)
	}

	// Oracle source is not accepted on this endpoint
	w = doJSON(t, mux, "POST", "/v1/scenes/"+sceneID+"/events",
		map[string]string{"description": "x", "source": "oracle"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oracle source, got %d", w.Code)
	}

	var events []narrative.Event
	w = doJSON(t, mux, "GET", "/v1/scenes/"+sceneID+"/events", nil, &events)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestRollDiceEndpoint(t *testing.T) {
	mux, _ := newTestServer(t)
	_, _, sceneID := seedActiveScene(t, mux)

	var roll narrative.DiceRoll
	w := doJSON(t, mux, "POST", "/v1/scenes/"+sceneID+"/rolls",
		map[string]string{"notation": "2d6", "reason": "luck"}, &roll)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(roll.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(roll.Results))
	}

	w = doJSON(t, mux, "POST", "/v1/scenes/"+sceneID+"/rolls",
		map[string]string{"notation": "banana"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad notation, got %d", w.Code)
	}
}

func TestCompleteSceneEndpoint(t *testing.T) {
	mux, _ := newTestServer(t)
	_, _, sceneID := seedActiveScene(t, mux)

	var scene narrative.Scene
	w := doJSON(t, mux, "POST", "/v1/scenes/"+sceneID+"/complete", map[string]string{}, &scene)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if scene.Status != narrative.SceneStatusCompleted {
		t.Errorf("expected completed, got %q", scene.Status)
	}

	w = doJSON(t, mux, "POST", "/v1/scenes/"+sceneID+"/complete", map[string]string{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for double completion, got %d", w.Code)
	}
}

func TestOracleFlow(t *testing.T) {
	mux, mock := newTestServer(t)
	_, _, sceneID := seedActiveScene(t, mux)

	mock.SetGenerateResponse("## A Dark Omen\nThe crows gather.\n\n## A Blessing\nThe rain stops.")

	var set narrative.InterpretationSet
	w := doJSON(t, mux, "POST", "/v1/scenes/"+sceneID+"/interpretations",
		map[string]interface{}{"question": "what next?", "oracle_results": "storm"}, &set)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(set.Interpretations) != 2 {
		t.Fatalf("expected 2 interpretations, got %d", len(set.Interpretations))
	}

	// The set is now current for the scene
	var current narrative.InterpretationSet
	w = doJSON(t, mux, "GET", "/v1/scenes/"+sceneID+"/interpretations/current", nil, &current)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if current.ID != set.ID {
		t.Errorf("expected set %q current, got %q", set.ID, current.ID)
	}

	// Select the first interpretation
	var result SelectResponse
	w = doJSON(t, mux, "POST", "/v1/interpretation-sets/"+set.ID+"/select",
		map[string]string{"interpretation_id": set.Interpretations[0].ID}, &result)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !result.Interpretation.IsSelected {
		t.Error("expected interpretation selected")
	}
	if result.Event.Source != narrative.SourceOracle {
		t.Errorf("expected oracle event, got %q", result.Event.Source)
	}

	// The selection produced an event in the scene
	var events []narrative.Event
	w = doJSON(t, mux, "GET", "/v1/scenes/"+sceneID+"/events", nil, &events)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestOracleBackendFailure(t *testing.T) {
	mux, mock := newTestServer(t)
	_, _, sceneID := seedActiveScene(t, mux)

	mock.SetGenerateError(io.ErrUnexpectedEOF)

	w := doJSON(t, mux, "POST", "/v1/scenes/"+sceneID+"/interpretations",
		map[string]interface{}{"question": "q", "oracle_results": "r"}, nil)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOracleCurrentNotFound(t *testing.T) {
	mux, _ := newTestServer(t)
	_, _, sceneID := seedActiveScene(t, mux)

	w := doJSON(t, mux, "GET", "/v1/scenes/"+sceneID+"/interpretations/current", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 with no current set, got %d", w.Code)
	}
}

func TestDeleteGameEndpoint(t *testing.T) {
	mux, _ := newTestServer(t)
	gameID, _, _ := seedActiveScene(t, mux)

	w := doJSON(t, mux, "DELETE", "/v1/games/"+gameID, nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(t, mux, "GET", "/v1/games/"+gameID, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}
