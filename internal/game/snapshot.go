package game

// Snapshot is an immutable copy of a session handed to the presentation layer and the advisor
type Snapshot struct {
	Phase            Phase             `json:"phase"`
	SecretWord       string            `json:"secretWord"`
	Players          []Player          `json:"players"`
	Transcript       []ClueEntry       `json:"transcript"`
	CurrentRound     int               `json:"currentRound"`
	CurrentTurnIndex int               `json:"currentTurnIndex"`
	RevealCountdown  int               `json:"revealCountdown"`
	Votes            map[string]string `json:"votes"`
	Winner           Outcome           `json:"winner"`
	Generation       uint64            `json:"generation"`
	TotalRounds      int               `json:"totalRounds"`

	// Revision orders the snapshots a controller publishes; zero outside a controller
	Revision uint64 `json:"revision"`
}

// Player looks up a player by id
func (s Snapshot) Player(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// CurrentPlayer returns the player whose turn it is
func (s Snapshot) CurrentPlayer() (Player, bool) {
	if s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentTurnIndex], true
}

// Impostor returns the player holding the Impostor role
func (s Snapshot) Impostor() (Player, bool) {
	for _, p := range s.Players {
		if p.IsImpostor() {
			return p, true
		}
	}
	return Player{}, false
}

// PlayerView is what one player may see of a session
type PlayerView struct {
	Phase           Phase       `json:"phase"`
	ViewerID        string      `json:"viewerId"`
	ViewerRole      Role        `json:"viewerRole"`
	SecretWord      string      `json:"secretWord,omitempty"`
	Players         []Player    `json:"players"`
	Transcript      []ClueEntry `json:"transcript"`
	CurrentRound    int         `json:"currentRound"`
	TotalRounds     int         `json:"totalRounds"`
	CurrentPlayerID string      `json:"currentPlayerId,omitempty"`
	RevealCountdown int         `json:"revealCountdown"`
	HasVoted        bool        `json:"hasVoted"`
	Winner          Outcome     `json:"winner,omitempty"`
}

// ViewFor hides what the viewer must not know: the word from the Impostor and every
// other player's role until the result is in
func ViewFor(s Snapshot, viewerID string) PlayerView {
	view := PlayerView{
		Phase:           s.Phase,
		ViewerID:        viewerID,
		Transcript:      s.Transcript,
		CurrentRound:    s.CurrentRound,
		TotalRounds:     s.TotalRounds,
		RevealCountdown: s.RevealCountdown,
		Winner:          s.Winner,
	}
	_, view.HasVoted = s.Votes[viewerID]

	if s.Phase == PhasePlaying {
		if current, ok := s.CurrentPlayer(); ok {
			view.CurrentPlayerID = current.ID
		}
	}

	viewer, ok := s.Player(viewerID)
	if ok {
		view.ViewerRole = viewer.Role
		if viewer.Role == RoleInnocent || s.Phase == PhaseResult {
			view.SecretWord = s.SecretWord
		}
	}

	view.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		if p.ID != viewerID && s.Phase != PhaseResult {
			p.Role = ""
		}
		view.Players[i] = p
	}
	return view
}
