// Package advisor supplies clue and vote text for agent-controlled players.
package advisor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"impostor/internal/config"
	"impostor/internal/game"
)

// New selects the advisor variant for the configuration. The live model is used only
// when it is requested and an API key is present; otherwise play continues offline.
func New(ctx context.Context, cfg config.AdvisorSettings, logger *zap.Logger) (game.Advisor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case config.ProviderOffline:
		logger.Info("using offline advisor")
		return NewOffline(nil), nil
	case config.ProviderGemini:
		if cfg.APIKey == "" {
			logger.Warn("no API key configured, falling back to offline advisor")
			return NewOffline(nil), nil
		}
		g, err := NewGemini(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using gemini advisor", zap.String("model", cfg.Model))
		return g, nil
	default:
		return nil, fmt.Errorf("unknown advisor provider %q", cfg.Provider)
	}
}
