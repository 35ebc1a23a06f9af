package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"impostor/internal/config"
	"impostor/internal/game"
)

func testFactory(code string) *game.Controller {
	return game.NewController(nil, game.Options{Settings: game.DefaultSettings()})
}

func newTestStore(t *testing.T, mutate func(cfg *config.ServerConfig)) *MemoryStore {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	return NewMemoryStore(cfg, testFactory, zaptest.NewLogger(t))
}

func TestNewMemoryStore(t *testing.T) {
	store := newTestStore(t, nil)

	if store == nil {
		t.Fatal("NewMemoryStore returned nil")
	}

	if store.sessions == nil {
		t.Fatal("sessions map not initialized")
	}

	if store.Count() != 0 {
		t.Errorf("expected empty store, got %d sessions", store.Count())
	}
}

func TestCreateSession(t *testing.T) {
	store := newTestStore(t, nil)

	t.Run("creates session with unique code", func(t *testing.T) {
		sess, err := store.CreateSession()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(sess.Code) != 5 {
			t.Errorf("expected session code length 5, got %d", len(sess.Code))
		}

		// Verify session code contains only alphanumeric characters
		for _, char := range sess.Code {
			if !((char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9')) {
				t.Errorf("session code contains invalid character: %c", char)
			}
		}
	})

	t.Run("creates session waiting in the lobby", func(t *testing.T) {
		sess, err := store.CreateSession()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if sess.Controller == nil {
			t.Fatal("controller not created")
		}

		if phase := sess.Controller.Snapshot().Phase; phase != game.PhaseLobby {
			t.Errorf("expected phase %s, got %s", game.PhaseLobby, phase)
		}

		if sess.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
	})

	t.Run("creates multiple sessions with unique codes", func(t *testing.T) {
		codes := make(map[string]bool)

		for i := 0; i < 100; i++ {
			sess, err := store.CreateSession()
			if err != nil {
				t.Fatalf("unexpected error on iteration %d: %v", i, err)
			}

			if codes[sess.Code] {
				t.Errorf("duplicate session code generated: %s", sess.Code)
			}
			codes[sess.Code] = true
		}
	})

	t.Run("honours configured code length", func(t *testing.T) {
		long := newTestStore(t, func(cfg *config.ServerConfig) { cfg.Server.SessionCodeLength = 8 })
		sess, err := long.CreateSession()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sess.Code) != 8 {
			t.Errorf("expected code length 8, got %d", len(sess.Code))
		}
	})
}

func TestCreateSession_Capacity(t *testing.T) {
	store := newTestStore(t, func(cfg *config.ServerConfig) { cfg.Server.MaxSessions = 2 })

	for i := 0; i < 2; i++ {
		if _, err := store.CreateSession(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := store.CreateSession(); !errors.Is(err, ErrStoreFull) {
		t.Errorf("expected ErrStoreFull, got %v", err)
	}

	// Expired sessions free their slot
	store.mu.Lock()
	for _, sess := range store.sessions {
		sess.lastActive = time.Now().Add(-3 * time.Hour)
	}
	store.mu.Unlock()

	if _, err := store.CreateSession(); err != nil {
		t.Errorf("expected a slot after expiry, got %v", err)
	}
}

func TestGetSession(t *testing.T) {
	store := newTestStore(t, nil)

	t.Run("returns error for non-existent session", func(t *testing.T) {
		_, err := store.GetSession("ABCDE")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("returns existing session and touches it", func(t *testing.T) {
		created, err := store.CreateSession()
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		created.mu.Lock()
		created.lastActive = time.Now().Add(-time.Hour)
		created.mu.Unlock()

		retrieved, err := store.GetSession(created.Code)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if retrieved != created {
			t.Error("retrieved session is not the same instance")
		}
		if time.Since(retrieved.LastActive()) > time.Minute {
			t.Error("GetSession did not refresh the activity timestamp")
		}
	})
}

func TestDeleteSession(t *testing.T) {
	store := newTestStore(t, nil)

	sess, err := store.CreateSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if err := store.DeleteSession(sess.Code); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetSession(sess.Code); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected session to be gone, got %v", err)
	}
	if err := store.DeleteSession(sess.Code); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	store := newTestStore(t, func(cfg *config.ServerConfig) { cfg.Server.SessionTimeout = time.Hour })

	fresh, _ := store.CreateSession()
	stale, _ := store.CreateSession()
	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-2 * time.Hour)
	stale.mu.Unlock()

	if n := store.Sweep(time.Now()); n != 1 {
		t.Errorf("expected 1 expired session, got %d", n)
	}
	if _, err := store.GetSession(fresh.Code); err != nil {
		t.Errorf("fresh session was removed: %v", err)
	}
	if _, err := store.GetSession(stale.Code); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stale session was kept: %v", err)
	}
}

func TestRun_ClosesSessionsOnShutdown(t *testing.T) {
	store := newTestStore(t, func(cfg *config.ServerConfig) { cfg.Server.SweepInterval = 10 * time.Millisecond })
	for i := 0; i < 3; i++ {
		if _, err := store.CreateSession(); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if store.Count() != 0 {
		t.Errorf("expected all sessions closed, got %d", store.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := newTestStore(t, nil)

	var wg sync.WaitGroup
	codes := make(chan string, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := store.CreateSession()
			if err != nil {
				t.Errorf("create failed: %v", err)
				return
			}
			codes <- sess.Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			if _, err := store.GetSession(code); err != nil {
				t.Errorf("get %s failed: %v", code, err)
			}
		}(code)
	}
	wg.Wait()

	if store.Count() != 50 {
		t.Errorf("expected 50 sessions, got %d", store.Count())
	}
}
