package narrative

import (
	"time"

	"github.com/google/uuid"
)

// DiceRoll records a resolved dice roll against a scene.
type DiceRoll struct {
	ID        string    `json:"id" db:"id"`
	SceneID   string    `json:"scene_id" db:"scene_id"`
	Notation  string    `json:"notation" db:"notation"`
	Results   []int     `json:"results" db:"-"` // stored as JSON in results_json
	Modifier  int       `json:"modifier" db:"modifier"`
	Total     int       `json:"total" db:"total"`
	Reason    string    `json:"reason,omitempty" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewDiceRoll creates a DiceRoll record for a scene.
func NewDiceRoll(sceneID, notation string, results []int, modifier, total int, reason string) *DiceRoll {
	return &DiceRoll{
		ID:        uuid.NewString(),
		SceneID:   sceneID,
		Notation:  notation,
		Results:   results,
		Modifier:  modifier,
		Total:     total,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}
