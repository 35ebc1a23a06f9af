package game

// ScoreLine is one row of the vote sheet shown with the verdict
type ScoreLine struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Votes      int    `json:"votes"`
	IsImpostor bool   `json:"isImpostor"`
	Ejected    bool   `json:"ejected"`
}

// Verdict is the read-only projection of a finished session
type Verdict struct {
	Outcome    Outcome     `json:"outcome"`
	Title      string      `json:"title"`
	SecretWord string      `json:"secretWord"`
	Impostor   Player      `json:"impostor"`
	Scores     []ScoreLine `json:"scores"`

	// HumanWon is false for both sides on a draw
	HumanWon bool `json:"humanWon"`

	// ImpostorSurvived is true whenever the Impostor was not ejected, draws included
	ImpostorSurvived bool `json:"impostorSurvived"`
}

// Project maps a finished snapshot to the verdict for the given viewer.
// It reports false while the session has no result yet.
func Project(s Snapshot, viewerID string) (Verdict, bool) {
	if s.Phase != PhaseResult || s.Winner == OutcomeNone {
		return Verdict{}, false
	}

	v := Verdict{
		Outcome:          s.Winner,
		Title:            verdictTitle(s.Winner),
		SecretWord:       s.SecretWord,
		ImpostorSurvived: s.Winner != OutcomeInnocent,
	}
	v.Impostor, _ = s.Impostor()

	ejected := ""
	if s.Winner != OutcomeDraw {
		ejected = mostVoted(s.Players)
	}

	for _, p := range s.Players {
		v.Scores = append(v.Scores, ScoreLine{
			PlayerID:   p.ID,
			Name:       p.Name,
			Avatar:     p.Avatar,
			Votes:      p.VotesReceived,
			IsImpostor: p.IsImpostor(),
			Ejected:    p.ID == ejected,
		})
	}

	if viewer, ok := s.Player(viewerID); ok {
		switch s.Winner {
		case OutcomeInnocent:
			v.HumanWon = viewer.Role == RoleInnocent
		case OutcomeImpostor:
			v.HumanWon = viewer.Role == RoleImpostor
		}
	}
	return v, true
}

func verdictTitle(o Outcome) string {
	switch o {
	case OutcomeInnocent:
		return "Innocents win!"
	case OutcomeImpostor:
		return "The Impostor wins!"
	case OutcomeDraw:
		return "Draw"
	default:
		return ""
	}
}

func mostVoted(players []Player) string {
	best, id := -1, ""
	for _, p := range players {
		if p.VotesReceived > best {
			best, id = p.VotesReceived, p.ID
		}
	}
	return id
}
