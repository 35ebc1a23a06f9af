package game

var impostorFallbackClues = []string{
	"I think it comes in several colors",
	"It is usually found indoors",
	"It does not take up much space",
	"Sometimes it is heavy",
	"I have seen it in shops",
}

var innocentFallbackClues = []string{
	"It usually has a curved shape",
	"The material is quite hard",
	"You can find it in a house",
	"It has a distinctive color",
	"You can hold it in your hand",
}

// FallbackClue picks a stand-in clue from the pool matching the role
func FallbackClue(role Role, r *Randomizer) string {
	pool := innocentFallbackClues
	if role == RoleImpostor {
		pool = impostorFallbackClues
	}
	return pool[r.IntN(len(pool))]
}

// RandomTarget picks a uniform vote target other than the voter
func RandomTarget(players []Player, voterID string, r *Randomizer) (string, bool) {
	candidates := make([]string, 0, len(players))
	for _, p := range players {
		if p.ID != voterID {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[r.IntN(len(candidates))], true
}
