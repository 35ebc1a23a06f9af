package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"impostor/internal/game"
)

// This file defines the configuration structures used by viper_config.go
// The actual loading is handled by viper in viper_config.go

// Advisor providers
const (
	ProviderOffline = "offline"
	ProviderGemini  = "gemini"
)

// MaxNameLength caps player display names (in runes)
const MaxNameLength = 12

// ServerConfig represents the server configuration
type ServerConfig struct {
	Server   ServerSettings  `yaml:"server"`
	Game     GameSettings    `yaml:"game"`
	Advisor  AdvisorSettings `yaml:"advisor"`
	Profiles ProfileSettings `yaml:"profiles"`
}

// ServerSettings contains server-wide settings
type ServerSettings struct {
	SessionCodeLength int           `yaml:"sessionCodeLength"`
	SessionTimeout    time.Duration `yaml:"sessionTimeout"` // idle sessions are swept after this
	MaxSessions       int           `yaml:"maxSessions"`
	SweepInterval     time.Duration `yaml:"sweepInterval"`

	// Server settings
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	PublicURL       string        `yaml:"publicURL"` // base URL encoded in QR codes; empty uses the request host
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"` // 0 for SSE support
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"` // Timeout for regular HTTP requests (middleware)

	// Rate limiting (using golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"` // requests per second
	RateLimitBurst int     `yaml:"rateLimitBurst"`

	// Request limits
	MaxRequestSize int64 `yaml:"maxRequestSize"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"` // json or text
}

// GameSettings holds the rules and pacing of every new session
type GameSettings struct {
	TotalRounds    int           `yaml:"totalRounds"`
	RevealSeconds  int           `yaml:"revealSeconds"`
	RevealInterval time.Duration `yaml:"revealInterval"`
	CluePacing     time.Duration `yaml:"cluePacing"`
	VotePacing     time.Duration `yaml:"votePacing"`
	MaxClueLength  int           `yaml:"maxClueLength"`
	Words          []string      `yaml:"words"`
	Roster         game.Roster   `yaml:"roster"`
}

// AdvisorSettings selects and tunes the clue and vote advisor
type AdvisorSettings struct {
	Provider string        `yaml:"provider"` // offline or gemini
	APIKey   string        `yaml:"apiKey"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`

	ClueTemperature float32 `yaml:"clueTemperature"`
	ClueMaxTokens   int32   `yaml:"clueMaxTokens"`
	VoteTemperature float32 `yaml:"voteTemperature"`
	VoteMaxTokens   int32   `yaml:"voteMaxTokens"`

	// RequestsPerSecond limits calls to the model across all sessions
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// ProfileSettings locates the saved roster profile
type ProfileSettings struct {
	Path           string `yaml:"path"`
	MaxAvatarBytes int    `yaml:"maxAvatarBytes"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			SessionCodeLength: 5,
			SessionTimeout:    2 * time.Hour,
			MaxSessions:       1000,
			SweepInterval:     time.Minute,

			Port:            "8080",
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // SSE and websocket streams stay open
			IdleTimeout:     0,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,

			RateLimit:      10,
			RateLimitBurst: 20,

			MaxRequestSize: 1048576, // 1MB

			LogLevel:  "info",
			LogFormat: "text",
		},
		Game: GameSettings{
			TotalRounds:    game.DefaultTotalRounds,
			RevealSeconds:  game.DefaultRevealSeconds,
			RevealInterval: time.Second,
			CluePacing:     1500 * time.Millisecond,
			VotePacing:     time.Second,
			MaxClueLength:  50,
			Words:          game.DefaultWords(),
			Roster:         game.DefaultRoster(),
		},
		Advisor: AdvisorSettings{
			Provider:          ProviderGemini,
			Model:             "gemini-2.5-flash",
			Timeout:           15 * time.Second,
			ClueTemperature:   0.8,
			ClueMaxTokens:     100,
			VoteTemperature:   0.1,
			VoteMaxTokens:     20,
			RequestsPerSecond: 2,
			Burst:             2,
		},
		Profiles: ProfileSettings{
			Path:           "data/profile.yaml",
			MaxAvatarBytes: 512 * 1024,
		},
	}
}

// Validate checks if the configuration is valid
func (c *ServerConfig) Validate() error {
	// Required fields
	if c.Server.Port == "" {
		return fmt.Errorf("PORT environment variable must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST environment variable must be set")
	}

	if c.Server.SessionCodeLength < 3 {
		return fmt.Errorf("sessionCodeLength must be at least 3")
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("maxSessions must be at least 1")
	}
	switch strings.ToLower(c.Server.LogFormat) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("logFormat must be json or text, got %q", c.Server.LogFormat)
	}

	if c.Game.TotalRounds < 1 {
		return fmt.Errorf("totalRounds must be at least 1")
	}
	if c.Game.RevealSeconds < 0 {
		return fmt.Errorf("revealSeconds cannot be negative")
	}
	if c.Game.MaxClueLength < 1 {
		return fmt.Errorf("maxClueLength must be at least 1")
	}
	if len(c.Game.Words) == 0 {
		return fmt.Errorf("game words: %w", game.ErrEmptyWordList)
	}
	for i, w := range c.Game.Words {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("game word %d is blank", i)
		}
	}
	if err := ValidateRoster(c.Game.Roster); err != nil {
		return fmt.Errorf("game roster: %w", err)
	}

	switch c.Advisor.Provider {
	case ProviderOffline, ProviderGemini:
	default:
		return fmt.Errorf("advisor provider must be %q or %q, got %q", ProviderOffline, ProviderGemini, c.Advisor.Provider)
	}
	if c.Advisor.Provider == ProviderGemini && c.Advisor.Model == "" {
		return fmt.Errorf("advisor model must be set for provider %q", ProviderGemini)
	}
	if c.Advisor.RequestsPerSecond <= 0 {
		return fmt.Errorf("advisor requestsPerSecond must be positive")
	}

	return nil
}

// ValidateRoster checks the display names of every seat. Agent votes name their
// target, so no name may equal or contain another, ignoring case.
func ValidateRoster(r game.Roster) error {
	var names []string
	for _, p := range []game.PlayerConfig{r.User, r.AI1, r.AI2} {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("player name cannot be empty")
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			return fmt.Errorf("player name %q exceeds %d characters", name, MaxNameLength)
		}

		lower := strings.ToLower(name)
		for _, other := range names {
			if strings.Contains(lower, strings.ToLower(other)) || strings.Contains(strings.ToLower(other), lower) {
				return fmt.Errorf("player names %q and %q are too alike", other, name)
			}
		}
		names = append(names, name)
	}
	return nil
}

// SessionSettings converts the game section into the settings a session starts with
func (g GameSettings) SessionSettings() game.Settings {
	return game.Settings{
		TotalRounds:   g.TotalRounds,
		RevealSeconds: g.RevealSeconds,
		Words:         append([]string(nil), g.Words...),
		Roster:        g.Roster,
	}
}

// ControllerOptions returns the controller tuning for a new session
func (g GameSettings) ControllerOptions() game.Options {
	return game.Options{
		Settings:       g.SessionSettings(),
		RevealInterval: g.RevealInterval,
		CluePacing:     g.CluePacing,
		VotePacing:     g.VotePacing,
		MaxClueLength:  g.MaxClueLength,
	}
}
