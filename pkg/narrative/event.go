package narrative

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventSource identifies how an event entered the narrative log.
type EventSource string

const (
	SourceManual EventSource = "manual"
	SourceOracle EventSource = "oracle"
	SourceDice   EventSource = "dice"
)

// Event is an immutable narrative log entry on a scene. Events created
// from an oracle interpretation keep a reference to it, but the
// description embeds the interpretation title so the log stays
// self-contained if the interpretation is later cascade-deleted.
type Event struct {
	ID               string      `json:"id" db:"id"`
	SceneID          string      `json:"scene_id" db:"scene_id"`
	Description      string      `json:"description" db:"description"`
	Source           EventSource `json:"source" db:"source"`
	InterpretationID *string     `json:"interpretation_id,omitempty" db:"interpretation_id"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

// NewEvent creates an Event on a scene. Description must be non-empty.
func NewEvent(sceneID, description string, source EventSource) (*Event, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &ValidationError{Msg: "event description cannot be empty"}
	}
	return &Event{
		ID:          uuid.NewString(),
		SceneID:     sceneID,
		Description: description,
		Source:      source,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
