package narrative

import (
	"time"

	"github.com/google/uuid"
)

// InterpretationSet is one batch of oracle interpretations generated for
// a single question/result pair. At most one set per scene is current;
// creating a new current set demotes the previous one in the same
// store transaction.
type InterpretationSet struct {
	ID            string    `json:"id" db:"id"`
	SceneID       string    `json:"scene_id" db:"scene_id"`
	Context       string    `json:"context" db:"context"`
	OracleResults string    `json:"oracle_results" db:"oracle_results"`
	RetryAttempt  int       `json:"retry_attempt" db:"retry_attempt"`
	IsCurrent     bool      `json:"is_current" db:"is_current"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	// Interpretations are populated on read, in generation order.
	Interpretations []Interpretation `json:"interpretations,omitempty" db:"-"`
}

// Interpretation is one candidate narrative suggestion within a set.
// Selection is a historical marker, not a mutual-exclusion flag:
// selecting one interpretation never unselects another, and several
// interpretations may end up selected over a session.
type Interpretation struct {
	ID          string    `json:"id" db:"id"`
	SetID       string    `json:"set_id" db:"set_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	IsSelected  bool      `json:"is_selected" db:"is_selected"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewInterpretationSet creates a set for a scene. The set is created
// current; the store demotes the previous current set when persisting.
func NewInterpretationSet(sceneID, context, oracleResults string, retryAttempt int) *InterpretationSet {
	return &InterpretationSet{
		ID:            uuid.NewString(),
		SceneID:       sceneID,
		Context:       context,
		OracleResults: oracleResults,
		RetryAttempt:  retryAttempt,
		IsCurrent:     true,
		CreatedAt:     time.Now().UTC(),
	}
}

// NewInterpretation creates an interpretation belonging to a set.
func NewInterpretation(setID, title, description string) *Interpretation {
	return &Interpretation{
		ID:          uuid.NewString(),
		SetID:       setID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
