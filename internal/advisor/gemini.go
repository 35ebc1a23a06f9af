package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"impostor/internal/config"
	"impostor/internal/game"
)

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("model returned no text")

// generator is the slice of the genai models service the advisor uses
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks a Gemini model for clues and votes. Requests from every session
// share one rate limiter.
type Gemini struct {
	models  generator
	cfg     config.AdvisorSettings
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewGemini connects to the Gemini API with the configured key
func NewGemini(ctx context.Context, cfg config.AdvisorSettings, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return newGemini(client.Models, cfg, logger), nil
}

func newGemini(models generator, cfg config.AdvisorSettings, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Gemini{
		models:  models,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		log:     logger.Named("gemini"),
	}
}

// Clue asks the model for a one-sentence clue in the agent's role
func (g *Gemini) Clue(ctx context.Context, req game.ClueRequest) (string, error) {
	if req.Player.Role == game.RoleImpostor {
		req.SecretWord = ""
	}

	text, err := g.generate(ctx, cluePrompt(req), clueSystemInstruction, g.cfg.ClueTemperature, g.cfg.ClueMaxTokens)
	if err != nil {
		return "", err
	}
	clue := cleanClue(text)
	g.log.Debug("clue generated", zap.String("player", req.Player.Name), zap.String("clue", clue))
	return clue, nil
}

// Vote asks the model to name the player it suspects
func (g *Gemini) Vote(ctx context.Context, req game.VoteRequest) (string, error) {
	text, err := g.generate(ctx, votePrompt(req), voteSystemInstruction, g.cfg.VoteTemperature, g.cfg.VoteMaxTokens)
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(text)
	g.log.Debug("vote generated",
		zap.String("player", req.Player.Name),
		zap.String("secret_word", req.SecretWord),
		zap.String("answer", answer))
	return answer, nil
}

func (g *Gemini) generate(ctx context.Context, prompt, system string, temperature float32, maxTokens int32) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	resp, err := g.models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
		MaxOutputTokens:   maxTokens,
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
