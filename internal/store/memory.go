package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"impostor/internal/config"
	"impostor/internal/game"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStoreFull       = errors.New("too many active sessions")
)

// ControllerFactory builds the controller for a newly created session code
type ControllerFactory func(code string) *game.Controller

// Session is one stored game and its bookkeeping
type Session struct {
	Code       string
	Controller *game.Controller
	CreatedAt  time.Time

	mu         sync.Mutex
	lastActive time.Time
}

// Touch marks the session as used now
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive returns when the session was last used
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// MemoryStore holds all game sessions in memory
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	newController ControllerFactory
	codeLength    int
	maxSessions   int
	idleTimeout   time.Duration
	sweepInterval time.Duration
	log           *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(cfg *config.ServerConfig, factory ControllerFactory, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MemoryStore{
		sessions:      make(map[string]*Session),
		newController: factory,
		codeLength:    5,
		maxSessions:   1000,
		idleTimeout:   2 * time.Hour,
		sweepInterval: time.Minute,
		log:           logger.Named("store"),
	}
	if cfg != nil {
		if cfg.Server.SessionCodeLength > 0 {
			s.codeLength = cfg.Server.SessionCodeLength
		}
		if cfg.Server.MaxSessions > 0 {
			s.maxSessions = cfg.Server.MaxSessions
		}
		if cfg.Server.SessionTimeout > 0 {
			s.idleTimeout = cfg.Server.SessionTimeout
		}
		if cfg.Server.SweepInterval > 0 {
			s.sweepInterval = cfg.Server.SweepInterval
		}
	}
	return s
}

// CreateSession creates a new session under a fresh code
func (s *MemoryStore) CreateSession() (*Session, error) {
	if s.Count() >= s.maxSessions {
		s.Sweep(time.Now())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return nil, ErrStoreFull
	}

	// Generate unique session code
	var code string
	for i := 0; i < 10; i++ { // Try up to 10 times
		candidate := generateSessionCode(s.codeLength)
		if _, exists := s.sessions[candidate]; !exists {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, fmt.Errorf("could not allocate a unique session code")
	}

	now := time.Now()
	sess := &Session{
		Code:       code,
		Controller: s.newController(code),
		CreatedAt:  now,
		lastActive: now,
	}
	s.sessions[code] = sess

	s.log.Info("session created", zap.String("code", code), zap.Int("active", len(s.sessions)))
	return sess, nil
}

// GetSession retrieves a session by code and marks it active
func (s *MemoryStore) GetSession(code string) (*Session, error) {
	s.mu.RLock()
	sess, exists := s.sessions[code]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("session %s: %w", code, ErrSessionNotFound)
	}
	sess.Touch()
	return sess, nil
}

// DeleteSession removes a session and stops its background work
func (s *MemoryStore) DeleteSession(code string) error {
	s.mu.Lock()
	sess, exists := s.sessions[code]
	delete(s.sessions, code)
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("session %s: %w", code, ErrSessionNotFound)
	}
	sess.Controller.Close()
	return nil
}

// Count returns the number of stored sessions
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the session timeout and reports how many went
func (s *MemoryStore) Sweep(now time.Time) int {
	var expired []*Session

	s.mu.Lock()
	for code, sess := range s.sessions {
		if now.Sub(sess.LastActive()) > s.idleTimeout {
			expired = append(expired, sess)
			delete(s.sessions, code)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Controller.Close()
		s.log.Info("session expired", zap.String("code", sess.Code))
	}
	return len(expired)
}

// Run sweeps idle sessions until the context is cancelled, then closes every session
func (s *MemoryStore) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return nil
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				s.log.Debug("sweep finished", zap.Int("expired", n), zap.Int("active", s.Count()))
			}
		}
	}
}

func (s *MemoryStore) closeAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Controller.Close()
	}
	s.log.Info("all sessions closed", zap.Int("count", len(all)))
}

// generateSessionCode generates an alphanumeric code of the given length
func generateSessionCode(length int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	rand.Read(b)

	for i := range b {
		b[i] = chars[b[i]%byte(len(chars))]
	}

	return string(b)
}
