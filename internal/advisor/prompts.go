package advisor

import (
	"fmt"
	"strings"

	"impostor/internal/game"
)

const clueSystemInstruction = "You are playing a party word game with two other players. " +
	"Answer in character, in English, with a single short sentence and nothing else."

const voteSystemInstruction = "You are playing a party word game and must vote for one player. " +
	"Answer with the player's name only."

// cluePrompt builds the per-role clue request. The Impostor prompt never contains the word.
func cluePrompt(req game.ClueRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game: word clues with one hidden Impostor.\n")
	fmt.Fprintf(&b, "Your name: %s.\n", req.Player.Name)

	history := clueHistory(req.Transcript)

	if req.Player.Role == game.RoleImpostor {
		b.WriteString("Your ROLE: IMPOSTOR (you do not know the secret word).\n")
		b.WriteString("GOAL: do not get caught. Say something vague that fits almost any physical object.\n")
		fmt.Fprintf(&b, "STRATEGY: read the clues so far:\n%s\n", history)
		b.WriteString("If someone said \"it is red\", say \"sometimes it comes in other colors\". ")
		b.WriteString("If someone said \"it is big\", say \"it depends on the model\".\n")
		b.WriteString("If you go first, say something safe like \"it is usually found in houses\".\n")
	} else {
		b.WriteString("Your ROLE: INNOCENT (you know the word).\n")
		fmt.Fprintf(&b, "SECRET WORD: %q.\n", req.SecretWord)
		fmt.Fprintf(&b, "GOAL: give a PHYSICAL, REAL clue about %q without saying it.\n", req.SecretWord)
		b.WriteString("GOLDEN RULE: mention a COLOR, MATERIAL, SHAPE or PLACE.\n")
		b.WriteString("FORBIDDEN: \"it is fun\", \"it is nice\", \"I like it\", \"it is important\".\n")
		b.WriteString("GOOD EXAMPLES:\n")
		b.WriteString("- Pizza: \"it has cheese\", \"it is round\", \"you eat it hot\".\n")
		b.WriteString("- Sun: \"it is bright\", \"it is in the sky\".\n")
		b.WriteString("- Guitar: \"it has strings\", \"it is made of wood\".\n")
		fmt.Fprintf(&b, "Clues so far:\n%s\n", history)
	}

	b.WriteString("Reply with ONE short sentence (at most 8 words). Be natural.")
	return b.String()
}

// votePrompt groups every other player's clues so the model can judge each profile
func votePrompt(req game.VoteRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing \"Secret Impostor\". Your name is %s.\n", req.Player.Name)
	fmt.Fprintf(&b, "There are %d players. One is the Impostor and does not know the secret word. ", len(req.Players))
	fmt.Fprintf(&b, "The others know the word is %q.\n\n", req.SecretWord)

	b.WriteString("Clues given:\n")
	for _, p := range req.Players {
		if p.ID == req.Player.ID {
			continue
		}
		clues := game.CluesBy(req.Transcript, p.ID)
		summary := "(said nothing)"
		if len(clues) > 0 {
			quoted := make([]string, len(clues))
			for i, c := range clues {
				quoted[i] = fmt.Sprintf("%q", c)
			}
			summary = strings.Join(quoted, " and ")
		}
		fmt.Fprintf(&b, "Player %s: %s\n", p.Name, summary)
	}
	b.WriteString("----------------\n")

	if req.Player.Role == game.RoleImpostor {
		fmt.Fprintf(&b, "YOUR ROLE: IMPOSTOR. You did not know the word, but now you know it was %q.\n", req.SecretWord)
		b.WriteString("YOUR GOAL: fool the others by voting for an Innocent so you survive.\n")
		b.WriteString("STRATEGY: pick the innocent player whose clue was the vaguest or strangest.\n")
	} else {
		fmt.Fprintf(&b, "YOUR ROLE: INNOCENT. You know the word %q.\n", req.SecretWord)
		b.WriteString("YOUR GOAL: find and vote for the Impostor.\n")
		b.WriteString("CRITERIA:\n")
		fmt.Fprintf(&b, "1. Did anyone say something that does not fit %q?\n", req.SecretWord)
		b.WriteString("2. Was anyone too generic (\"it is nice\", \"I like it\")? That is suspicious.\n")
		b.WriteString("3. Vote for whoever most likely does not know the word.\n")
	}

	b.WriteString("\nReply ONLY with the name of the player you vote for. Example: \"Sandra\".")
	return b.String()
}

func clueHistory(transcript []game.ClueEntry) string {
	if len(transcript) == 0 {
		return "(nobody has spoken yet)"
	}
	lines := make([]string, len(transcript))
	for i, entry := range transcript {
		lines[i] = fmt.Sprintf("- %s said: %q", entry.AuthorName, entry.Text)
	}
	return strings.Join(lines, "\n")
}

var cluePrefixes = []string{"my clue is:", "clue:"}

// cleanClue strips wrapping quotes and boilerplate prefixes from model output
func cleanClue(text string) string {
	text = trimQuotes(text)
	for _, prefix := range cluePrefixes {
		if len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
			text = trimQuotes(text[len(prefix):])
		}
	}
	return text
}

func trimQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "\"“”"))
}
