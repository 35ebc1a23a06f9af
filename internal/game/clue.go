package game

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClueEntry is one line of the transcript. Entries are never modified after creation.
type ClueEntry struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	Round      int       `json:"round"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewClueEntry creates a transcript entry, snapshotting the author's current name
func NewClueEntry(author Player, text string, round int) ClueEntry {
	return ClueEntry{
		ID:         uuid.NewString(),
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       strings.TrimSpace(text),
		Round:      round,
		CreatedAt:  time.Now(),
	}
}

// CluesBy returns the clue texts of one author in transcript order
func CluesBy(transcript []ClueEntry, playerID string) []string {
	clues := make([]string, 0)
	for _, entry := range transcript {
		if entry.AuthorID == playerID {
			clues = append(clues, entry.Text)
		}
	}
	return clues
}
