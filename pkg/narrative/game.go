package narrative

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Game is the top-level narrative container. Games are independently
// activatable: marking one active does not demote the others.
type Game struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewGame creates a Game with a fresh ID. Name must be non-empty.
func NewGame(name, description string) (*Game, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Msg: "game name cannot be empty"}
	}
	now := time.Now().UTC()
	return &Game{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
