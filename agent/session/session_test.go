package session

import (
	"testing"
	"time"

	contractx "github.com/datachat-dev/datachat/agent/contract"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAppendPreservesOrder(t *testing.T) {
	t.Parallel()

	s := newSession("s-1", fixedClock(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)))
	s.Append(contractx.RoleUser, "What is the limit of account 5?")
	s.Append(contractx.RoleAssistant, "The limit is 9000.")
	s.Append(contractx.RoleUser, "And its products?")

	history := s.History()
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	if history[0].Role != contractx.RoleUser || history[1].Role != contractx.RoleAssistant {
		t.Fatalf("roles out of order: %v", history)
	}
	if history[2].Content != "And its products?" {
		t.Fatalf("last turn = %q", history[2].Content)
	}
}

func TestAppendDropsBlankContent(t *testing.T) {
	t.Parallel()

	s := newSession("s-1", nil)
	s.Append(contractx.RoleUser, "   ")
	s.Append(contractx.RoleAssistant, "")
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	t.Parallel()

	s := newSession("s-1", nil)
	s.Append(contractx.RoleUser, "original")

	history := s.History()
	history[0].Content = "mutated"

	if got := s.History()[0].Content; got != "original" {
		t.Fatalf("session turn = %q, mutation leaked through History()", got)
	}
}

func TestTimestampsAreUTC(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	s := newSession("s-1", fixedClock(time.Date(2026, 9, 1, 8, 0, 0, 0, loc)))
	s.Append(contractx.RoleUser, "hello")

	at := s.History()[0].At
	if at.Location() != time.UTC {
		t.Fatalf("timestamp location = %v, want UTC", at.Location())
	}
}

func TestManagerLifecycle(t *testing.T) {
	t.Parallel()

	m := NewManager()

	a := m.Open()
	b := m.Open()
	if a.ID() == b.ID() {
		t.Fatal("two sessions share an id")
	}

	got, ok := m.Get(a.ID())
	if !ok || got != a {
		t.Fatal("Get() did not return the opened session")
	}

	a.Append(contractx.RoleUser, "only in a")
	if b.Len() != 0 {
		t.Fatal("turns leaked between sessions")
	}

	m.Close(a.ID())
	if _, ok := m.Get(a.ID()); ok {
		t.Fatal("closed session still retrievable")
	}
	if _, ok := m.Get(b.ID()); !ok {
		t.Fatal("closing one session dropped another")
	}
}

func TestGetUnknownID(t *testing.T) {
	t.Parallel()

	m := NewManager()
	if _, ok := m.Get("nope"); ok {
		t.Fatal("unknown id must not resolve")
	}
}
