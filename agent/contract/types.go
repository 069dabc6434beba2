package contract

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation session. Turn sequences are
// append-only; a turn is never edited after it is recorded.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ActionResult is the observation fed back into the dispatch loop after an
// operation invocation. Error carries argument-parsing or lookup problems
// the model is expected to recover from; it is never shown raw to the user.
type ActionResult struct {
	Operation string `json:"operation"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Answer is the outcome of one full turn through the analyst pipeline.
type Answer struct {
	Reply string `json:"reply"`
	// Hint is the closest matched intent example, when the intent index
	// produced one. Advisory only.
	Hint string `json:"hint,omitempty"`
}
