package game

import (
	"context"
	"strings"
	"unicode/utf8"
)

// ClueRequest is what an agent knows when asked for a clue.
// SecretWord is empty when the agent is the Impostor.
type ClueRequest struct {
	Player     Player
	SecretWord string
	Transcript []ClueEntry
}

// VoteRequest is what an agent knows when asked for a vote
type VoteRequest struct {
	Player     Player
	Players    []Player
	SecretWord string
	Transcript []ClueEntry
}

// Advisor supplies clue and vote content for agent-controlled players.
// Implementations never see the live session, only copies.
type Advisor interface {
	// Clue returns a short clue for the requesting agent
	Clue(ctx context.Context, req ClueRequest) (string, error)

	// Vote returns the name of the player the agent votes for
	Vote(ctx context.Context, req VoteRequest) (string, error)
}

const minClueLength = 3

var disclaimerMarkers = []string{
	"as an ai",
	"i am an ai",
	"i'm an ai",
	"language model",
}

// usableClue rejects empty, too short or self-referential advisor output
func usableClue(text string) bool {
	if utf8.RuneCountInString(text) < minClueLength {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range disclaimerMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// ResolveVoteTarget maps an advisor answer to a player id by a case-insensitive
// substring match on names. The voter is never a valid target.
func ResolveVoteTarget(answer string, players []Player, voterID string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(answer))
	if lower == "" {
		return "", false
	}
	for _, p := range players {
		if p.ID == voterID {
			continue
		}
		if lower == p.ID {
			return p.ID, true
		}
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name != "" && strings.Contains(lower, name) {
			return p.ID, true
		}
	}
	return "", false
}
