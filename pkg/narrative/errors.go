package narrative

import "fmt"

// NotFoundError indicates a referenced entity does not exist or does not
// belong to its claimed parent. Never retried.
type NotFoundError struct {
	Entity string // "game", "act", "scene", "event", "interpretation set", "interpretation"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError indicates an invariant violation caught before any
// write: duplicate titles, empty required fields, invalid state
// transitions. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NoActiveContextError indicates no active game exists, or the active
// game has no active scene. Raised as the precondition check for oracle,
// event, and dice operations.
type NoActiveContextError struct {
	Msg string
}

func (e *NoActiveContextError) Error() string {
	return e.Msg
}

// BackendError wraps a failure from the text-generation backend
// (transport, auth, rate limit). The orchestrator does not retry these.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("llm backend: %v", e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// OracleError is the umbrella error for interpretation generation: it
// wraps a backend failure, or signals that every attempt parsed to
// nothing.
type OracleError struct {
	Msg string
	Err error
}

func (e *OracleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
