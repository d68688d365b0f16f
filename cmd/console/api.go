package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sologm/engine/pkg/narrative"
)

// apiClient wraps the engine's HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

// activeContext mirrors the /v1/context response.
type activeContext struct {
	Game  *narrative.Game  `json:"game"`
	Act   *narrative.Act   `json:"act"`
	Scene *narrative.Scene `json:"scene"`
}

type selectResult struct {
	Interpretation *narrative.Interpretation `json:"interpretation"`
	Event          *narrative.Event          `json:"event"`
}

func (c *apiClient) testConnection() bool {
	resp, err := c.http.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do issues the request and decodes the response into out (unless out
// is nil). Error payloads from the API become plain errors.
func (c *apiClient) do(method, path string, reqBody, out interface{}) error {
	var body io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *apiClient) listGames() ([]narrative.Game, error) {
	var games []narrative.Game
	if err := c.do("GET", "/v1/games", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *apiClient) createGame(name, description string) (*narrative.Game, error) {
	var game narrative.Game
	req := map[string]string{"name": name, "description": description}
	if err := c.do("POST", "/v1/games", req, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *apiClient) activateGame(id string) (*narrative.Game, error) {
	var game narrative.Game
	if err := c.do("POST", "/v1/games/"+id+"/activate", map[string]string{}, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *apiClient) createAct(gameID string, title *string) (*narrative.Act, error) {
	var act narrative.Act
	req := map[string]*string{"title": title}
	if err := c.do("POST", "/v1/games/"+gameID+"/acts", req, &act); err != nil {
		return nil, err
	}
	return &act, nil
}

func (c *apiClient) createScene(actID, title, description string) (*narrative.Scene, error) {
	var scene narrative.Scene
	req := map[string]string{"title": title, "description": description}
	if err := c.do("POST", "/v1/acts/"+actID+"/scenes", req, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func (c *apiClient) completeScene(sceneID string) (*narrative.Scene, error) {
	var scene narrative.Scene
	if err := c.do("POST", "/v1/scenes/"+sceneID+"/complete", map[string]string{}, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func (c *apiClient) getContext() (*activeContext, error) {
	var ac activeContext
	if err := c.do("GET", "/v1/context", nil, &ac); err != nil {
		return nil, err
	}
	return &ac, nil
}

func (c *apiClient) addEvent(sceneID, description string) (*narrative.Event, error) {
	var event narrative.Event
	req := map[string]string{"description": description}
	if err := c.do("POST", "/v1/scenes/"+sceneID+"/events", req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *apiClient) listEvents(sceneID string, limit int) ([]narrative.Event, error) {
	var events []narrative.Event
	path := fmt.Sprintf("/v1/scenes/%s/events?limit=%d", sceneID, limit)
	if err := c.do("GET", path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *apiClient) rollDice(sceneID, notation, reason string) (*narrative.DiceRoll, error) {
	var roll narrative.DiceRoll
	req := map[string]string{"notation": notation, "reason": reason}
	if err := c.do("POST", "/v1/scenes/"+sceneID+"/rolls", req, &roll); err != nil {
		return nil, err
	}
	return &roll, nil
}

func (c *apiClient) interpret(sceneID, question, oracleResults string) (*narrative.InterpretationSet, error) {
	var set narrative.InterpretationSet
	req := map[string]string{"question": question, "oracle_results": oracleResults}
	if err := c.do("POST", "/v1/scenes/"+sceneID+"/interpretations", req, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (c *apiClient) retryInterpretations(sceneID string) (*narrative.InterpretationSet, error) {
	var set narrative.InterpretationSet
	if err := c.do("POST", "/v1/scenes/"+sceneID+"/interpretations/retry", map[string]string{}, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (c *apiClient) selectInterpretation(setID, interpretationID string) (*selectResult, error) {
	var result selectResult
	req := map[string]any{"interpretation_id": interpretationID, "add_event": true}
	if err := c.do("POST", "/v1/interpretation-sets/"+setID+"/select", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
