package narrative

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SceneStatus is the lifecycle state of a scene.
type SceneStatus string

const (
	SceneStatusActive    SceneStatus = "active"
	SceneStatusCompleted SceneStatus = "completed"
)

// Scene is a narrative unit within an Act. Titles are unique within the
// owning game (case-insensitive). At most one Scene per Act is active;
// completion and activation are independent: completing a scene does not
// change which scene is active.
type Scene struct {
	ID          string      `json:"id" db:"id"`
	ActID       string      `json:"act_id" db:"act_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Status      SceneStatus `json:"status" db:"status"`
	Sequence    int         `json:"sequence" db:"sequence"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// NewScene creates a Scene in the given act. Title must be non-empty.
// Sequence is assigned by the store at creation time.
func NewScene(actID, title, description string) (*Scene, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &ValidationError{Msg: "scene title cannot be empty"}
	}
	now := time.Now().UTC()
	return &Scene{
		ID:          uuid.NewString(),
		ActID:       actID,
		Title:       title,
		Description: description,
		Status:      SceneStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsCompleted reports whether the scene has been marked complete.
func (s *Scene) IsCompleted() bool {
	return s.Status == SceneStatusCompleted
}
