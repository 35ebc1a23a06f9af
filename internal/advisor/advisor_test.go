package advisor

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"impostor/internal/config"
	"impostor/internal/game"
)

type fakeGenerator struct {
	reply string
	err   error

	model   string
	prompts []string
	configs []*genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.configs = append(f.configs, cfg)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(f.reply, genai.RoleModel)},
		},
	}, nil
}

func testPlayers() []game.Player {
	return []game.Player{
		{ID: game.HumanID, Name: "You", Role: game.RoleInnocent},
		{ID: game.Agent1ID, Name: "Elmer", Role: game.RoleImpostor, IsAgent: true},
		{ID: game.Agent2ID, Name: "Sandra", Role: game.RoleInnocent, IsAgent: true},
	}
}

func testTranscript() []game.ClueEntry {
	players := testPlayers()
	return []game.ClueEntry{
		game.NewClueEntry(players[0], "It has cheese", 1),
		game.NewClueEntry(players[1], "It is usually found indoors", 1),
		game.NewClueEntry(players[2], "It is round", 1),
	}
}

func testGemini(t *testing.T, gen generator) *Gemini {
	t.Helper()
	cfg := config.DefaultConfig().Advisor
	cfg.RequestsPerSecond = 1000
	return newGemini(gen, cfg, zaptest.NewLogger(t))
}

func TestGemini_ClueForInnocent(t *testing.T) {
	gen := &fakeGenerator{reply: `"Clue: It has a crust"`}
	g := testGemini(t, gen)

	clue, err := g.Clue(context.Background(), game.ClueRequest{
		Player:     testPlayers()[2],
		SecretWord: "Pizza",
		Transcript: testTranscript(),
	})
	require.NoError(t, err)
	assert.Equal(t, "It has a crust", clue)

	assert.Equal(t, "gemini-2.5-flash", gen.model)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"Pizza"`)
	assert.Contains(t, gen.prompts[0], "Elmer said")
	require.NotNil(t, gen.configs[0].Temperature)
	assert.InDelta(t, 0.8, *gen.configs[0].Temperature, 0.0001)
	assert.EqualValues(t, 100, gen.configs[0].MaxOutputTokens)
}

func TestGemini_ClueForImpostorNeverLeaksWord(t *testing.T) {
	gen := &fakeGenerator{reply: "Sometimes it is heavy"}
	g := testGemini(t, gen)

	_, err := g.Clue(context.Background(), game.ClueRequest{
		Player:     testPlayers()[1],
		SecretWord: "Pizza",
	})
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.NotContains(t, gen.prompts[0], "Pizza")
	assert.Contains(t, gen.prompts[0], "IMPOSTOR")
	assert.Contains(t, gen.prompts[0], "nobody has spoken yet")
}

func TestGemini_Vote(t *testing.T) {
	gen := &fakeGenerator{reply: " Elmer \n"}
	g := testGemini(t, gen)

	answer, err := g.Vote(context.Background(), game.VoteRequest{
		Player:     testPlayers()[2],
		Players:    testPlayers(),
		SecretWord: "Pizza",
		Transcript: testTranscript(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Elmer", answer)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, `Player Elmer: "It is usually found indoors"`)
	assert.Contains(t, prompt, `Player You: "It has cheese"`)
	assert.NotContains(t, prompt, "Player Sandra:", "the voter is not listed as a suspect")
	assert.InDelta(t, 0.1, *gen.configs[0].Temperature, 0.0001)
	assert.EqualValues(t, 20, gen.configs[0].MaxOutputTokens)
}

func TestGemini_Errors(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		g := testGemini(t, &fakeGenerator{err: errors.New("quota exceeded")})
		_, err := g.Clue(context.Background(), game.ClueRequest{Player: testPlayers()[1]})
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("empty reply", func(t *testing.T) {
		g := testGemini(t, &fakeGenerator{reply: "   "})
		_, err := g.Vote(context.Background(), game.VoteRequest{Player: testPlayers()[1], Players: testPlayers()})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cfg := config.DefaultConfig().Advisor
		cfg.RequestsPerSecond = 0.001
		cfg.Burst = 1
		g := newGemini(&fakeGenerator{reply: "fine"}, cfg, zaptest.NewLogger(t))

		// drain the single token
		_, err := g.Clue(context.Background(), game.ClueRequest{Player: testPlayers()[2]})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = g.Clue(ctx, game.ClueRequest{Player: testPlayers()[2]})
		assert.Error(t, err)
	})
}

func TestCleanClue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"It is round"`, "It is round"},
		{"My clue is: it is bright", "it is bright"},
		{"clue: made of wood", "made of wood"},
		{`"Clue: “has strings”"`, "has strings"},
		{"  plain  ", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanClue(tt.in))
		})
	}
}

func TestOffline(t *testing.T) {
	o := NewOffline(game.NewRandomizer(rand.NewPCG(5, 6)))
	players := testPlayers()

	for i := 0; i < 30; i++ {
		clue, err := o.Clue(context.Background(), game.ClueRequest{Player: players[1]})
		require.NoError(t, err)
		assert.NotEmpty(t, clue)

		name, err := o.Vote(context.Background(), game.VoteRequest{Player: players[1], Players: players})
		require.NoError(t, err)
		assert.NotEqual(t, "Elmer", name)

		target, ok := game.ResolveVoteTarget(name, players, players[1].ID)
		assert.True(t, ok, "offline votes always resolve")
		assert.NotEqual(t, players[1].ID, target)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Clue(ctx, game.ClueRequest{Player: players[0]})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("offline provider", func(t *testing.T) {
		cfg := config.DefaultConfig().Advisor
		cfg.Provider = config.ProviderOffline
		a, err := New(context.Background(), cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &Offline{}, a)
	})

	t.Run("gemini without key falls back", func(t *testing.T) {
		cfg := config.DefaultConfig().Advisor
		cfg.APIKey = ""
		a, err := New(context.Background(), cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &Offline{}, a)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := config.DefaultConfig().Advisor
		cfg.Provider = "oracle"
		_, err := New(context.Background(), cfg, logger)
		assert.True(t, err != nil && strings.Contains(err.Error(), "oracle"))
	})
}
