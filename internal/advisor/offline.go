package advisor

import (
	"context"

	"impostor/internal/game"
)

// Offline answers without any model: stock clues for the role and a random vote
type Offline struct {
	rnd *game.Randomizer
}

// NewOffline creates an offline advisor. A nil randomizer uses the global source.
func NewOffline(rnd *game.Randomizer) *Offline {
	if rnd == nil {
		rnd = game.NewRandomizer(nil)
	}
	return &Offline{rnd: rnd}
}

// Clue returns a stock clue from the pool matching the agent's role
func (o *Offline) Clue(ctx context.Context, req game.ClueRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return game.FallbackClue(req.Player.Role, o.rnd), nil
}

// Vote names a uniformly chosen player other than the voter
func (o *Offline) Vote(ctx context.Context, req game.VoteRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, ok := game.RandomTarget(req.Players, req.Player.ID, o.rnd)
	if !ok {
		return "", nil
	}
	for _, p := range req.Players {
		if p.ID == id {
			return p.Name, nil
		}
	}
	return id, nil
}
