package game

import "time"

// Role is a player's hidden allegiance.
type Role string

const (
	RoleChef     Role = "chef"
	RoleSaboteur Role = "saboteur"
)

// Result is the terminal outcome of a match.
type Result string

const (
	ResultOngoing     Result = "ongoing"
	ResultCrewWin     Result = "crew_win"
	ResultSaboteurWin Result = "saboteur_win"
)

// Player is one agent in a match, keyed by wallet address. Once the game has
// started players are never removed; eliminated players stay in the roster
// with Alive=false. The alive flag only ever flips true -> false.
type Player struct {
	Address  string    `json:"address"`
	Name     string    `json:"name"`
	Role     Role      `json:"role,omitempty"`
	Alive    bool      `json:"alive"`
	JoinedAt time.Time `json:"joined_at"`
}

// Message is one chat entry in the chronological game log.
type Message struct {
	Address   string    `json:"address"`
	Content   string    `json:"content"`
	Round     int       `json:"round"`
	Timestamp time.Time `json:"timestamp"`
}

// Elimination records one player voted out, with their revealed role.
type Elimination struct {
	Address   string    `json:"address"`
	Role      Role      `json:"role"`
	Round     int       `json:"round"`
	Timestamp time.Time `json:"timestamp"`
}
