package game

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Default tuning for a session
const (
	DefaultTotalRounds   = 2
	DefaultRevealSeconds = 4
)

// Settings is the read-only configuration a session is started with
type Settings struct {
	TotalRounds   int
	RevealSeconds int
	Words         []string
	Roster        Roster
}

// DefaultSettings returns the stock rules, word pool and roster
func DefaultSettings() Settings {
	return Settings{
		TotalRounds:   DefaultTotalRounds,
		RevealSeconds: DefaultRevealSeconds,
		Words:         DefaultWords(),
		Roster:        DefaultRoster(),
	}
}

// DefaultWords returns the stock secret word pool
func DefaultWords() []string {
	return []string{
		"Pizza", "Guitar", "Sun", "Beach", "Elephant",
		"Computer", "Airplane", "Chocolate", "Soccer", "Mountain",
		"Clock", "Book", "Shoes", "Cat", "Ice cream",
		"Rain", "Mirror", "Car", "Moon", "Coffee",
	}
}

// Session is the authoritative state of one game.
// It is not safe for concurrent use; Controller serializes every call.
// Each transition method either commits a consistent state or leaves it untouched.
type Session struct {
	Phase            Phase
	SecretWord       string
	Players          []Player // turn order
	Transcript       []ClueEntry
	CurrentRound     int
	CurrentTurnIndex int
	RevealCountdown  int
	Votes            map[string]string // voter id -> target id
	Winner           Outcome

	// Generation changes on every rebuild so late advisor replies can be discarded
	Generation uint64

	TotalRounds   int
	RevealSeconds int
}

// NewSession creates a session waiting in the lobby
func NewSession() *Session {
	return &Session{
		Phase:        PhaseLobby,
		CurrentRound: 1,
		Votes:        make(map[string]string),
		TotalRounds:  DefaultTotalRounds,
	}
}

// StartGame replaces every field of the session with a fresh game built from the deal
func (s *Session) StartGame(settings Settings, deal Deal) {
	seats := settings.Roster.seats()

	players := make([]Player, 0, PlayerCount)
	for _, seatIdx := range deal.Order {
		st := seats[seatIdx]
		players = append(players, Player{
			ID:      st.id,
			Name:    st.profile.Name,
			IsAgent: st.isAgent,
			Role:    deal.Roles[seatIdx],
			Avatar:  st.profile.Avatar,
			Seat:    seatIdx,
		})
	}

	rounds := settings.TotalRounds
	if rounds < 1 {
		rounds = DefaultTotalRounds
	}

	*s = Session{
		Phase:            PhaseReveal,
		SecretWord:       deal.Word,
		Players:          players,
		Transcript:       []ClueEntry{},
		CurrentRound:     1,
		CurrentTurnIndex: 0,
		RevealCountdown:  settings.RevealSeconds,
		Votes:            make(map[string]string),
		Winner:           OutcomeNone,
		Generation:       s.Generation + 1,
		TotalRounds:      rounds,
		RevealSeconds:    settings.RevealSeconds,
	}
}

// Reset discards the game and returns to the lobby
func (s *Session) Reset() {
	gen := s.Generation + 1
	*s = *NewSession()
	s.Generation = gen
}

// TickReveal decrements the reveal countdown once and enters Playing when it reaches zero.
// It reports whether the phase changed.
func (s *Session) TickReveal() (bool, error) {
	if s.Phase != PhaseReveal {
		return false, ErrWrongPhase
	}
	if s.RevealCountdown > 0 {
		s.RevealCountdown--
	}
	if s.RevealCountdown > 0 {
		return false, nil
	}
	if err := s.transition(PhasePlaying); err != nil {
		return false, err
	}
	return true, nil
}

// AppendClue adds a transcript entry for the player. Blank text is ignored.
func (s *Session) AppendClue(playerID, text string, round int) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	author, ok := s.Player(playerID)
	if !ok {
		return false
	}
	s.Transcript = append(s.Transcript, NewClueEntry(author, text, round))
	return true
}

// AdvanceTurn moves the turn pointer. A wrap to seat zero either starts the next round
// or, when the rounds are exhausted, opens voting without touching the round counter.
func (s *Session) AdvanceTurn() error {
	if s.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if len(s.Players) == 0 {
		return ErrCorruptSession
	}

	next := (s.CurrentTurnIndex + 1) % len(s.Players)
	if next != 0 {
		s.CurrentTurnIndex = next
		return nil
	}

	if s.CurrentRound < s.TotalRounds {
		s.CurrentRound++
		s.CurrentTurnIndex = 0
		return nil
	}

	return s.transition(PhaseVoting)
}

// RecordVote stores the voter's choice, replacing any earlier vote from the same voter
func (s *Session) RecordVote(voterID, targetID string) error {
	if _, ok := s.Player(voterID); !ok {
		return fmt.Errorf("voter %q: %w", voterID, ErrUnknownPlayer)
	}
	if _, ok := s.Player(targetID); !ok {
		return fmt.Errorf("target %q: %w", targetID, ErrInvalidTarget)
	}
	s.Votes[voterID] = targetID
	return nil
}

// HasVoted reports whether the player has a recorded vote
func (s *Session) HasVoted(playerID string) bool {
	_, ok := s.Votes[playerID]
	return ok
}

// AllVoted reports whether every player has exactly one recorded vote
func (s *Session) AllVoted() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if !s.HasVoted(p.ID) {
			return false
		}
	}
	return true
}

// ApplyTally copies the per-player counts onto the roster and closes the game
func (s *Session) ApplyTally(result TallyResult) error {
	if !s.Phase.CanTransitionTo(PhaseResult) {
		return fmt.Errorf("tally in %s: %w", s.Phase, ErrWrongPhase)
	}
	for i := range s.Players {
		s.Players[i].VotesReceived = result.Counts[s.Players[i].ID]
	}
	s.Winner = result.Winner
	return s.transition(PhaseResult)
}

// transition moves the session to target if the phase table allows it
func (s *Session) transition(target Phase) error {
	if !s.Phase.CanTransitionTo(target) {
		return fmt.Errorf("%s to %s: %w", s.Phase, target, ErrWrongPhase)
	}
	s.Phase = target
	return nil
}

// CurrentPlayer returns the player whose turn it is
func (s *Session) CurrentPlayer() (Player, bool) {
	if s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentTurnIndex], true
}

// Player looks up a player by id
func (s *Session) Player(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// CheckInvariants validates the structural rules of the aggregate
func (s *Session) CheckInvariants() error {
	if s.Phase == PhaseLobby {
		return nil
	}
	if len(s.Players) != PlayerCount {
		return fmt.Errorf("%w: %d players", ErrCorruptSession, len(s.Players))
	}
	impostors := 0
	for _, p := range s.Players {
		if p.Role == RoleImpostor {
			impostors++
		}
	}
	if impostors != 1 {
		return fmt.Errorf("%w: %d impostors", ErrCorruptSession, impostors)
	}
	if s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.Players) {
		return fmt.Errorf("%w: turn index %d", ErrCorruptSession, s.CurrentTurnIndex)
	}
	if s.CurrentRound < 1 || s.CurrentRound > s.TotalRounds {
		return fmt.Errorf("%w: round %d of %d", ErrCorruptSession, s.CurrentRound, s.TotalRounds)
	}
	for voter, target := range s.Votes {
		_, voterOK := s.Player(voter)
		_, targetOK := s.Player(target)
		if !voterOK || !targetOK {
			return fmt.Errorf("%w: vote %s -> %s", ErrCorruptSession, voter, target)
		}
	}
	return nil
}

// Snapshot returns a deep copy safe to hand to readers
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:            s.Phase,
		SecretWord:       s.SecretWord,
		Players:          slices.Clone(s.Players),
		Transcript:       slices.Clone(s.Transcript),
		CurrentRound:     s.CurrentRound,
		CurrentTurnIndex: s.CurrentTurnIndex,
		RevealCountdown:  s.RevealCountdown,
		Votes:            maps.Clone(s.Votes),
		Winner:           s.Winner,
		Generation:       s.Generation,
		TotalRounds:      s.TotalRounds,
	}
}
