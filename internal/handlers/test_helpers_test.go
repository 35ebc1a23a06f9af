package handlers

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"impostor/internal/advisor"
	"impostor/internal/config"
	"impostor/internal/game"
	"impostor/internal/profile"
	"impostor/internal/store"
)

// testEnv wires a handler the way cmd/server does, with fast pacing and an offline advisor
type testEnv struct {
	cfg      *config.ServerConfig
	bus      *EventBus
	store    *store.MemoryStore
	profiles *profile.Store
	advisor  game.Advisor
	logger   *zap.Logger
	handler  *Handler
	router   *chi.Mux
}

func newTestEnv(t *testing.T, overrides ...func(*config.ServerConfig)) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Game.RevealSeconds = 1
	cfg.Game.RevealInterval = time.Millisecond
	cfg.Game.CluePacing = 0
	cfg.Game.VotePacing = 0
	cfg.Advisor.Provider = config.ProviderOffline
	cfg.Profiles.Path = filepath.Join(t.TempDir(), "profile.yaml")
	cfg.Profiles.MaxAvatarBytes = 4096
	for _, override := range overrides {
		override(cfg)
	}

	logger := zaptest.NewLogger(t)
	bus := NewEventBus()
	profiles := profile.NewStore(cfg.Profiles, logger)
	adv := advisor.NewOffline(game.NewRandomizer(rand.NewPCG(7, 11)))

	st := store.NewMemoryStore(cfg, NewControllerFactory(cfg, adv, profiles, bus, logger), logger)
	h := New(st, bus, cfg, profiles, logger)
	router := SetupRouter(h, cfg, &RouterOptions{
		DisableRateLimiting:  true,
		DisableRequestLogger: true,
		StaticDir:            t.TempDir(),
	})

	// Run returns at once on a cancelled context after closing every session
	t.Cleanup(func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		st.Run(ctx)
	})

	return &testEnv{
		cfg:      cfg,
		bus:      bus,
		store:    st,
		profiles: profiles,
		advisor:  adv,
		logger:   logger,
		handler:  h,
		router:   router,
	}
}

// factory builds a controller factory sharing the environment's bus and profile store
func (e *testEnv) factory() store.ControllerFactory {
	return NewControllerFactory(e.cfg, e.advisor, e.profiles, e.bus, e.logger)
}

// createGame creates a session through the router and returns its code
func (e *testEnv) createGame(t *testing.T) string {
	t.Helper()
	w := e.do(httptest.NewRequest(http.MethodPost, "/game/new", nil))
	require.Equal(t, http.StatusSeeOther, w.Code)

	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/game/"), "unexpected redirect %q", loc)
	return strings.TrimPrefix(loc, "/game/")
}

func (e *testEnv) session(t *testing.T, code string) *store.Session {
	t.Helper()
	sess, err := e.store.GetSession(code)
	require.NoError(t, err)
	return sess
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

// waitFor polls the session until cond holds
func waitFor(t *testing.T, sess *store.Session, cond func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	var snap game.Snapshot
	require.Eventually(t, func() bool {
		snap = sess.Controller.Snapshot()
		return cond(snap)
	}, 5*time.Second, 2*time.Millisecond)
	return snap
}

// humanTurnOrVoting is true once the game waits for the human player
func humanTurnOrVoting(s game.Snapshot) bool {
	if s.Phase == game.PhaseVoting {
		return true
	}
	if s.Phase != game.PhasePlaying {
		return false
	}
	current, ok := s.CurrentPlayer()
	return ok && current.ID == game.HumanID
}
