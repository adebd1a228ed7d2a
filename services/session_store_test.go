package services

import (
	"errors"
	"testing"
	"time"
)

func TestSessionStoreLifecycle(t *testing.T) {
	st := NewSessionStore(time.Hour)
	a := st.Create()
	b := st.Create()
	if a.ID == b.ID {
		t.Fatal("session ids collide")
	}
	if st.Len() != 2 {
		t.Fatalf("Len = %d", st.Len())
	}

	got, err := st.Get(a.ID)
	if err != nil || got != a {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := st.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	if err := st.Destroy(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := st.Destroy(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double destroy: %v", err)
	}
	if _, err := st.Get(a.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("destroyed session still reachable")
	}
	if _, err := st.Get(b.ID); err != nil {
		t.Error("destroying one session affected another")
	}
}

func TestSessionStoreSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewSessionStore(30 * time.Minute)
	st.now = func() time.Time { return now }

	idle := st.Create()
	active := st.Create()
	busy := st.Create()

	now = now.Add(20 * time.Minute)
	if _, err := st.Get(active.ID); err != nil {
		t.Fatal(err)
	}

	now = now.Add(20 * time.Minute)
	busy.action.Lock()
	if removed := st.Sweep(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	busy.action.Unlock()

	if _, err := st.Get(idle.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived sweep")
	}
	if _, err := st.Get(active.ID); err != nil {
		t.Error("recently used session was swept")
	}
	if _, err := st.Get(busy.ID); err != nil {
		t.Error("session with a running action was swept")
	}
}

func TestSessionSweeperRemovesIdleSessions(t *testing.T) {
	st := NewSessionStore(time.Millisecond)
	st.Create()
	st.Create()
	time.Sleep(5 * time.Millisecond)

	sw := NewSessionSweeper(st, 20*time.Millisecond)
	if err := sw.Start(); err != nil {
		t.Fatal(err)
	}
	defer sw.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for st.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sessions left after sweeping: %d", st.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSessionSweeperRejectsBadInterval(t *testing.T) {
	if err := NewSessionSweeper(NewSessionStore(time.Minute), 0).Start(); err == nil {
		t.Error("expected error for zero interval")
	}
}
