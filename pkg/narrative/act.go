package narrative

import (
	"time"

	"github.com/google/uuid"
)

// Act is a top-level narrative division of a Game. At most one Act per
// Game is active at a time; activation demotes siblings atomically in
// the store.
type Act struct {
	ID        string    `json:"id" db:"id"`
	GameID    string    `json:"game_id" db:"game_id"`
	Title     *string   `json:"title,omitempty" db:"title"` // nil for untitled acts
	Sequence  int       `json:"sequence" db:"sequence"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewAct creates an Act for a game. Sequence is assigned by the store
// at creation time (max existing + 1).
func NewAct(gameID string, title *string) *Act {
	now := time.Now().UTC()
	return &Act{
		ID:        uuid.NewString(),
		GameID:    gameID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayTitle returns the act title, or a placeholder for untitled acts.
func (a *Act) DisplayTitle() string {
	if a.Title == nil || *a.Title == "" {
		return "Untitled Act"
	}
	return *a.Title
}
