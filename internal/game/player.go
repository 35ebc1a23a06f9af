package game

// Role is the secret allegiance dealt to a player at game start
type Role string

const (
	RoleInnocent Role = "innocent"
	RoleImpostor Role = "impostor"
)

// Fixed player ids. They stay stable for the lifetime of a session.
const (
	HumanID  = "user"
	Agent1ID = "ai1"
	Agent2ID = "ai2"
)

// PlayerCount is the number of seats in every session
const PlayerCount = 3

// PlayerConfig is the cosmetic profile of one seat (name and avatar reference)
type PlayerConfig struct {
	Name   string `yaml:"name" mapstructure:"name" json:"name"`
	Avatar string `yaml:"avatar" mapstructure:"avatar" json:"avatar"`
}

// Roster holds the profiles of the three seats in configuration order
type Roster struct {
	User PlayerConfig `yaml:"user" mapstructure:"user" json:"user"`
	AI1  PlayerConfig `yaml:"ai1" mapstructure:"ai1" json:"ai1"`
	AI2  PlayerConfig `yaml:"ai2" mapstructure:"ai2" json:"ai2"`
}

// DefaultRoster returns the stock names and preset avatars
func DefaultRoster() Roster {
	return Roster{
		User: PlayerConfig{Name: "You", Avatar: "avatar-user"},
		AI1:  PlayerConfig{Name: "Elmer", Avatar: "avatar-elmer"},
		AI2:  PlayerConfig{Name: "Sandra", Avatar: "avatar-sandra"},
	}
}

// seat describes one roster slot
type seat struct {
	id      string
	isAgent bool
	profile PlayerConfig
}

// seats returns the roster in configuration order
func (r Roster) seats() [PlayerCount]seat {
	return [PlayerCount]seat{
		{id: HumanID, isAgent: false, profile: r.User},
		{id: Agent1ID, isAgent: true, profile: r.AI1},
		{id: Agent2ID, isAgent: true, profile: r.AI2},
	}
}

// Player represents a participant in a session
type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsAgent       bool   `json:"isAgent"`
	Role          Role   `json:"role"`
	Avatar        string `json:"avatar"`
	VotesReceived int    `json:"votesReceived"`

	// Seat is the player's index in the configured roster, independent of turn order
	Seat int `json:"seat"`
}

// IsImpostor reports whether the player was dealt the Impostor role
func (p Player) IsImpostor() bool {
	return p.Role == RoleImpostor
}
