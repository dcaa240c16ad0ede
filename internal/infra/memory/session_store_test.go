package memory

import (
	"testing"

	"quran-quiz-service/internal/game"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := game.NewSession(game.Config{ID: "s-1"})
	store.Put(session)
	if got, ok := store.Get("s-1"); !ok || got != session {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}

	store.Delete("s-1")
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed")
	}
}
