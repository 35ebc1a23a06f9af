package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// LoadConfig loads configuration using Viper
// Priority order: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	// Set config file details
	v.SetConfigName("server")
	v.SetConfigType("yaml")

	// Add config paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/impostor")
	}

	// Enable environment variable binding
	v.SetEnvPrefix("IMPOSTOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific environment variables
	// These allow both IMPOSTOR_SERVER_PORT and PORT to work
	v.BindEnv("server.port", "IMPOSTOR_SERVER_PORT", "PORT")
	v.BindEnv("server.host", "IMPOSTOR_SERVER_HOST", "HOST")
	v.BindEnv("server.publicurl", "PUBLIC_URL")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("server.logformat", "LOG_FORMAT")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.maxrequestsize", "MAX_REQUEST_SIZE")
	v.BindEnv("advisor.provider", "ADVISOR_PROVIDER")
	v.BindEnv("advisor.apikey", "GEMINI_API_KEY", "API_KEY")
	v.BindEnv("advisor.model", "GEMINI_MODEL")
	v.BindEnv("profiles.path", "PROFILE_PATH")

	setDefaults(v, DefaultConfig())

	// Try to read config file (it's optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			// Config file was found but another error occurred
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; continue with env vars and defaults
	}

	// Create config struct
	cfg := &ServerConfig{}

	// Unmarshal into the struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Additional validation
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *ServerConfig) {
	v.SetDefault("server.sessioncodelength", d.Server.SessionCodeLength)
	v.SetDefault("server.sessiontimeout", d.Server.SessionTimeout.String())
	v.SetDefault("server.maxsessions", d.Server.MaxSessions)
	v.SetDefault("server.sweepinterval", d.Server.SweepInterval.String())
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.publicurl", d.Server.PublicURL)

	// Timeout defaults
	v.SetDefault("server.readtimeout", d.Server.ReadTimeout.String())
	v.SetDefault("server.writetimeout", "0s")
	v.SetDefault("server.idletimeout", "0s") // 0 for SSE support
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout.String())
	v.SetDefault("server.requesttimeout", d.Server.RequestTimeout.String())

	// Rate limiting defaults
	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", d.Server.MaxRequestSize)

	v.SetDefault("server.loglevel", d.Server.LogLevel)
	v.SetDefault("server.logformat", d.Server.LogFormat)

	// Game defaults
	v.SetDefault("game.totalrounds", d.Game.TotalRounds)
	v.SetDefault("game.revealseconds", d.Game.RevealSeconds)
	v.SetDefault("game.revealinterval", d.Game.RevealInterval.String())
	v.SetDefault("game.cluepacing", d.Game.CluePacing.String())
	v.SetDefault("game.votepacing", d.Game.VotePacing.String())
	v.SetDefault("game.maxcluelength", d.Game.MaxClueLength)
	v.SetDefault("game.words", d.Game.Words)
	v.SetDefault("game.roster.user.name", d.Game.Roster.User.Name)
	v.SetDefault("game.roster.user.avatar", d.Game.Roster.User.Avatar)
	v.SetDefault("game.roster.ai1.name", d.Game.Roster.AI1.Name)
	v.SetDefault("game.roster.ai1.avatar", d.Game.Roster.AI1.Avatar)
	v.SetDefault("game.roster.ai2.name", d.Game.Roster.AI2.Name)
	v.SetDefault("game.roster.ai2.avatar", d.Game.Roster.AI2.Avatar)

	// Advisor defaults
	v.SetDefault("advisor.provider", d.Advisor.Provider)
	v.SetDefault("advisor.model", d.Advisor.Model)
	v.SetDefault("advisor.timeout", d.Advisor.Timeout.String())
	v.SetDefault("advisor.cluetemperature", d.Advisor.ClueTemperature)
	v.SetDefault("advisor.cluemaxtokens", d.Advisor.ClueMaxTokens)
	v.SetDefault("advisor.votetemperature", d.Advisor.VoteTemperature)
	v.SetDefault("advisor.votemaxtokens", d.Advisor.VoteMaxTokens)
	v.SetDefault("advisor.requestspersecond", d.Advisor.RequestsPerSecond)
	v.SetDefault("advisor.burst", d.Advisor.Burst)

	v.SetDefault("profiles.path", d.Profiles.Path)
	v.SetDefault("profiles.maxavatarbytes", d.Profiles.MaxAvatarBytes)
}
