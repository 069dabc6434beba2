// Package session holds per-conversation turn history. Sessions live in
// memory only and are discarded when the process (or the owning manager)
// lets go of them.
package session

import (
	"strings"
	"time"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

// Session is an append-only ordered sequence of turns scoped to one
// conversation. It is mutated only by the single in-flight request for the
// session; concurrent requests against the same session are serialized by
// the caller.
type Session struct {
	id    string
	turns []contractx.Turn
	now   func() time.Time
}

func newSession(id string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{id: id, now: now}
}

func (s *Session) ID() string {
	return s.id
}

// Append records one turn. Blank content is dropped; turns are never
// reordered or deleted once recorded.
func (s *Session) Append(role contractx.Role, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	s.turns = append(s.turns, contractx.Turn{
		Role:    role,
		Content: content,
		At:      s.now().UTC(),
	})
}

// History returns a copy of the turn sequence in order.
func (s *Session) History() []contractx.Turn {
	return append([]contractx.Turn{}, s.turns...)
}

func (s *Session) Len() int {
	return len(s.turns)
}
