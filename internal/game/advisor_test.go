package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVoteTarget(t *testing.T) {
	players := []Player{
		{ID: HumanID, Name: "You"},
		{ID: Agent1ID, Name: "Elmer"},
		{ID: Agent2ID, Name: "Sandra"},
	}

	tests := []struct {
		name   string
		answer string
		voter  string
		want   string
		ok     bool
	}{
		{"exact name", "Sandra", Agent1ID, Agent2ID, true},
		{"lower case with punctuation", "sandra.", Agent1ID, Agent2ID, true},
		{"name inside a sentence", "I vote for Elmer", Agent2ID, Agent1ID, true},
		{"player id", "user", Agent1ID, HumanID, true},
		{"self vote is not resolved", "Elmer", Agent1ID, "", false},
		{"nonsense", "the moon", Agent1ID, "", false},
		{"empty", "  ", Agent1ID, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveVoteTarget(tt.answer, players, tt.voter)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUsableClue(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Round", true},
		{"ok", false},
		{"", false},
		{"As an AI I cannot play", false},
		{"I'm an AI language model", false},
		{"Cheesy slices", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, usableClue(tt.text))
		})
	}
}
