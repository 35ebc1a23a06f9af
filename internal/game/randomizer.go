package game

import (
	"math/rand/v2"
	"sync"
)

// Deal is the random setup of a new session
type Deal struct {
	Word string

	// Roles is indexed by roster seat
	Roles [PlayerCount]Role

	// Order lists roster seats in turn order
	Order [PlayerCount]int
}

// Randomizer deals roles, seating and the secret word.
// A nil source falls back to the runtime's global generator.
type Randomizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomizer creates a randomizer. Pass a seeded source for reproducible deals.
func NewRandomizer(src rand.Source) *Randomizer {
	r := &Randomizer{}
	if src != nil {
		r.rng = rand.New(src)
	}
	return r
}

// Deal picks a word uniformly and shuffles roles and seating independently.
// The inputs are never modified.
func (r *Randomizer) Deal(words []string) (Deal, error) {
	if len(words) == 0 {
		return Deal{}, ErrEmptyWordList
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d := Deal{
		Word:  words[r.intN(len(words))],
		Roles: [PlayerCount]Role{RoleImpostor, RoleInnocent, RoleInnocent},
		Order: [PlayerCount]int{0, 1, 2},
	}

	r.shuffle(len(d.Roles), func(i, j int) {
		d.Roles[i], d.Roles[j] = d.Roles[j], d.Roles[i]
	})
	r.shuffle(len(d.Order), func(i, j int) {
		d.Order[i], d.Order[j] = d.Order[j], d.Order[i]
	})

	return d, nil
}

// IntN returns a uniform int in [0, n)
func (r *Randomizer) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intN(n)
}

func (r *Randomizer) intN(n int) int {
	if r.rng != nil {
		return r.rng.IntN(n)
	}
	return rand.IntN(n)
}

func (r *Randomizer) shuffle(n int, swap func(i, j int)) {
	if r.rng != nil {
		r.rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}
