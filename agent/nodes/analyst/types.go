package analystnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/datachat-dev/datachat/agent/contract"
	sessionx "github.com/datachat-dev/datachat/agent/session"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session is nil")
)

type GraphInput struct {
	Session *sessionx.Session
	Text    string
}

type GraphOutput struct {
	Answer contractx.Answer
}

// GraphState flows through the turn pipeline. History is snapshotted before
// the dispatcher runs so the current question is not part of its own
// context.
type GraphState struct {
	Session *sessionx.Session
	Text    string
	Now     time.Time

	History []contractx.Turn
	Hint    string
	Reply   string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if in.Session == nil {
		return nil, ErrInvalidSession
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		Session: in.Session,
		Text:    text,
		Now:     nowFn().UTC(),
		History: in.Session.History(),
	}, nil
}
