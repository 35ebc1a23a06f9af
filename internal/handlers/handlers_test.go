package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impostor/internal/game"
)

func TestEventBus(t *testing.T) {
	t.Run("delivers to subscribers of the session only", func(t *testing.T) {
		bus := NewEventBus()
		a := bus.Subscribe("AAAAA")
		b := bus.Subscribe("BBBBB")
		defer bus.Unsubscribe("AAAAA", a)
		defer bus.Unsubscribe("BBBBB", b)

		bus.Publish(Event{Type: EventSessionUpdated, SessionCode: "AAAAA"})

		select {
		case ev := <-a:
			assert.Equal(t, EventSessionUpdated, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
		assert.Empty(t, b)
	})

	t.Run("unsubscribe closes the channel and forgets the session", func(t *testing.T) {
		bus := NewEventBus()
		ch := bus.Subscribe("AAAAA")
		assert.Equal(t, 1, bus.SubscriberCount("AAAAA"))

		bus.Unsubscribe("AAAAA", ch)

		_, open := <-ch
		assert.False(t, open)
		assert.Equal(t, 0, bus.SubscriberCount("AAAAA"))
		assert.NotContains(t, bus.subscribers, "AAAAA")
	})

	t.Run("publish never blocks on a full subscriber", func(t *testing.T) {
		bus := NewEventBus()
		ch := bus.Subscribe("AAAAA")
		defer bus.Unsubscribe("AAAAA", ch)

		done := make(chan struct{})
		go func() {
			for i := 0; i < 100; i++ {
				bus.Publish(Event{Type: EventSessionUpdated, SessionCode: "AAAAA"})
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked")
		}
		assert.Len(t, ch, cap(ch))
	})

	t.Run("publish without subscribers is a no-op", func(t *testing.T) {
		bus := NewEventBus()
		assert.NotPanics(t, func() {
			bus.Publish(Event{Type: EventPhaseChanged, SessionCode: "NOONE"})
		})
	})
}

func TestControllerFactory(t *testing.T) {
	t.Run("publishes a phase change when the game starts", func(t *testing.T) {
		env := newTestEnv(t)
		events := env.bus.Subscribe("FACTO")
		defer env.bus.Unsubscribe("FACTO", events)

		ctrl := env.factory()("FACTO")
		t.Cleanup(ctrl.Close)

		require.NoError(t, ctrl.Start())

		select {
		case ev := <-events:
			assert.Equal(t, EventPhaseChanged, ev.Type)
			assert.Equal(t, "FACTO", ev.SessionCode)
			assert.Equal(t, game.PhaseReveal, ev.Snapshot.Phase)
		case <-time.After(time.Second):
			t.Fatal("no event published")
		}

		require.Eventually(t, func() bool {
			for {
				select {
				case ev := <-events:
					if ev.Type == EventPhaseChanged && ev.Snapshot.Phase == game.PhasePlaying {
						return true
					}
				default:
					return false
				}
			}
		}, 5*time.Second, 5*time.Millisecond)
	})

	t.Run("starts from the saved profile", func(t *testing.T) {
		env := newTestEnv(t)
		roster := game.DefaultRoster()
		roster.User.Name = "Zed"
		roster.AI2.Avatar = "avatar-owl"
		require.NoError(t, env.profiles.Save(roster))

		ctrl := env.factory()("SAVED")
		t.Cleanup(ctrl.Close)

		assert.Equal(t, roster, ctrl.Roster())
	})

	t.Run("falls back to the configured roster", func(t *testing.T) {
		env := newTestEnv(t)
		ctrl := env.factory()("PLAIN")
		t.Cleanup(ctrl.Close)

		assert.Equal(t, env.cfg.Game.Roster, ctrl.Roster())
	})
}

func TestSessionLookup(t *testing.T) {
	env := newTestEnv(t)
	code := env.createGame(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"exact code", "/game/" + code, http.StatusOK},
		{"lowercase code", "/game/" + strings.ToLower(code), http.StatusOK},
		{"unknown code", "/game/ZZZZZ", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestGetOrCreateSession(t *testing.T) {
	t.Run("issues a cookie on first visit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		id := getOrCreateSession(w, r)

		require.NotEmpty(t, id)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookie, cookies[0].Name)
		assert.Equal(t, id, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("reuses an existing cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookie, Value: "existing"})

		assert.Equal(t, "existing", getOrCreateSession(w, r))
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestNewDefaults(t *testing.T) {
	h := New(nil, NewEventBus(), nil, nil, nil)
	assert.NotNil(t, h.config)
	assert.NotNil(t, h.profiles)
	assert.NotNil(t, h.log)
	assert.Nil(t, h.Store())
}
