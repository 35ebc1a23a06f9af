package game

// Phase represents the current phase of a session
type Phase string

const (
	PhaseLobby   Phase = "lobby"   // Waiting for the start command
	PhaseReveal  Phase = "reveal"  // Roles shown, countdown running
	PhasePlaying Phase = "playing" // Clue rounds
	PhaseVoting  Phase = "voting"  // Everyone votes once
	PhaseResult  Phase = "result"  // Verdict shown, rematch possible
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from the current phase to target is valid.
// Reveal is reachable from every phase because StartGame rebuilds the whole session.
func (p Phase) CanTransitionTo(target Phase) bool {
	if target == PhaseReveal {
		return true
	}

	validTransitions := map[Phase][]Phase{
		PhaseLobby:   {},
		PhaseReveal:  {PhasePlaying, PhaseLobby},
		PhasePlaying: {PhaseVoting, PhaseLobby},
		PhaseVoting:  {PhaseResult, PhaseLobby},
		PhaseResult:  {PhaseLobby},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// Outcome is the resolved winner of a session
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeInnocent Outcome = "innocent"
	OutcomeImpostor Outcome = "impostor"
	OutcomeDraw     Outcome = "draw"
)
