package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"impostor/internal/config"
	"impostor/internal/game"
	"impostor/internal/profile"
	"impostor/internal/store"
)

// Cookie names
const (
	sessionCookie  = "session"
	lastGameCookie = "last_game"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store    *store.MemoryStore
	eventBus *EventBus
	config   *config.ServerConfig
	profiles *profile.Store
	log      *zap.Logger
}

// New creates a new handler
func New(st *store.MemoryStore, bus *EventBus, cfg *config.ServerConfig, profiles *profile.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if profiles == nil {
		profiles = profile.NewStore(cfg.Profiles, logger)
	}
	return &Handler{
		store:    st,
		eventBus: bus,
		config:   cfg,
		profiles: profiles,
		log:      logger.Named("http"),
	}
}

// Store returns the handler's store (for testing)
func (h *Handler) Store() *store.MemoryStore {
	return h.store
}

// Event types published for a session
const (
	EventPhaseChanged    = "phase_changed"
	EventCountdownUpdate = "countdown_update"
	EventSessionUpdated  = "session_updated"
)

// Event is a committed change of one session
type Event struct {
	Type        string
	SessionCode string
	Snapshot    game.Snapshot
}

// EventBus fans session events out to the streams watching that session
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe subscribes to events for a session
func (eb *EventBus) Subscribe(code string) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 16)
	eb.subscribers[code] = append(eb.subscribers[code], ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (eb *EventBus) Unsubscribe(code string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[code]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[code] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(eb.subscribers[code]) == 0 {
		delete(eb.subscribers, code)
	}
}

// SubscriberCount reports how many streams watch a session
func (eb *EventBus) SubscriberCount(code string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers[code])
}

// Publish delivers an event to every subscriber of its session.
// A subscriber whose buffer is full misses the event; the next one carries the full state.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[event.SessionCode] {
		select {
		case ch <- event:
		default:
		}
	}
}

// NewControllerFactory builds controllers for new sessions. Each controller
// starts from the saved roster and publishes its changes on bus.
func NewControllerFactory(cfg *config.ServerConfig, advisor game.Advisor, profiles *profile.Store, bus *EventBus, logger *zap.Logger) store.ControllerFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(code string) *game.Controller {
		opts := cfg.Game.ControllerOptions()
		opts.AdvisorTimeout = cfg.Advisor.Timeout
		opts.Logger = logger.Named("game").With(zap.String("code", code))

		if profiles != nil {
			roster, err := profiles.Load(cfg.Game.Roster)
			if err != nil {
				logger.Warn("using configured roster", zap.String("code", code), zap.Error(err))
			}
			opts.Settings.Roster = roster
		}

		var (
			mu        sync.Mutex
			lastPhase = game.PhaseLobby
		)
		opts.OnChange = func(s game.Snapshot) {
			mu.Lock()
			eventType := EventSessionUpdated
			switch {
			case s.Phase != lastPhase:
				eventType = EventPhaseChanged
			case s.Phase == game.PhaseReveal:
				eventType = EventCountdownUpdate
			}
			lastPhase = s.Phase
			mu.Unlock()

			bus.Publish(Event{Type: eventType, SessionCode: code, Snapshot: s})
		}
		return game.NewController(advisor, opts)
	}
}

// sessionFromRequest resolves the {code} URL parameter, writing a 404 when it is unknown
func (h *Handler) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	sess, err := h.store.GetSession(code)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			http.Error(w, "Game not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to load game", http.StatusInternalServerError)
		}
		return nil, false
	}
	return sess, true
}

// getOrCreateSession gets or creates the browser id used to correlate log lines
func getOrCreateSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7, // 7 days
	})
	return id
}

func rememberGame(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     lastGameCookie,
		Value:    code,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 1 day
	})
}
