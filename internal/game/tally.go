package game

// TallyResult is the transient outcome of counting votes
type TallyResult struct {
	Counts   map[string]int
	MaxCount int
	Tied     []string // ids sharing MaxCount, in roster order
	Winner   Outcome
	Ejected  string // empty on a draw
}

// Tally counts the votes and derives the winner.
// Votes for ids that are not players are dropped rather than rejected.
// A tie for the most votes is a Draw: nobody is ejected.
func Tally(players []Player, votes map[string]string) TallyResult {
	counts := make(map[string]int, len(players))
	for _, p := range players {
		counts[p.ID] = 0
	}

	for _, target := range votes {
		if _, ok := counts[target]; ok {
			counts[target]++
		}
	}

	result := TallyResult{Counts: counts}
	for _, count := range counts {
		if count > result.MaxCount {
			result.MaxCount = count
		}
	}

	for _, p := range players {
		if counts[p.ID] == result.MaxCount {
			result.Tied = append(result.Tied, p.ID)
		}
	}

	if len(result.Tied) != 1 {
		result.Winner = OutcomeDraw
		return result
	}

	result.Ejected = result.Tied[0]
	for _, p := range players {
		if p.ID != result.Ejected {
			continue
		}
		if p.IsImpostor() {
			result.Winner = OutcomeInnocent
		} else {
			result.Winner = OutcomeImpostor
		}
	}
	return result
}
