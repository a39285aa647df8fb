package game

import "time"

// PlayerView is a roster entry as seen by one requester. Role is populated
// only when the requester is entitled to see it.
type PlayerView struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Alive      bool   `json:"alive"`
	Role       Role   `json:"role,omitempty"`
	Commitment string `json:"commitment,omitempty"`
}

// InvestigationView is a scan as disclosed in a state snapshot: the reported
// result, never the accuracy flag.
type InvestigationView struct {
	Scanner string              `json:"scanner"`
	Target  string              `json:"target"`
	Result  InvestigationResult `json:"result"`
	Round   int                 `json:"round"`
}

// StateView is a point-in-time snapshot of a game tailored to one requester.
type StateView struct {
	ID               string              `json:"id"`
	Phase            Phase               `json:"phase"`
	Round            int                 `json:"round"`
	MaxRounds        int                 `json:"max_rounds"`
	Result           Result              `json:"result"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	Stakes           string              `json:"stakes,omitempty"`
	Players          []PlayerView        `json:"players"`
	Messages         []Message           `json:"messages"`
	VoteTally        map[string]int      `json:"vote_tally,omitempty"`
	VoteHistory      []RoundVoteHistory  `json:"vote_history,omitempty"`
	Eliminations     []Elimination       `json:"eliminations,omitempty"`
	Investigations   []InvestigationView `json:"investigations,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	StartedAt        time.Time           `json:"started_at,omitempty"`
	EndedAt          time.Time           `json:"ended_at,omitempty"`
}

// GetState builds a snapshot for forAddress. Visibility rules: a player always
// sees their own role, everyone sees eliminated players' roles, and every
// role is public once the game has ended. Investigations are visible to their
// scanner during play and to everyone after the end. An empty forAddress
// yields the spectator view.
func (g *Game) GetState(forAddress string) StateView {
	g.mu.Lock()

	view := StateView{
		ID:           g.ID,
		Phase:        g.phase,
		Round:        g.round,
		MaxRounds:    g.cfg.MaxRounds,
		Result:       g.result,
		Stakes:       g.stakes,
		CreatedAt:    g.createdAt,
		StartedAt:    g.startedAt,
		EndedAt:      g.endedAt,
		Messages:     make([]Message, len(g.messages)),
		Eliminations: make([]Elimination, len(g.eliminations)),
	}
	copy(view.Messages, g.messages)
	copy(view.Eliminations, g.eliminations)

	ended := g.phase == PhaseEnd
	for _, address := range g.order {
		p := g.players[address]
		pv := PlayerView{
			Address:    p.Address,
			Name:       p.Name,
			Alive:      p.Alive,
			Commitment: g.commitments[address],
		}
		if ended || !p.Alive || address == forAddress {
			pv.Role = p.Role
		}
		view.Players = append(view.Players, pv)
	}

	for _, inv := range g.investigations {
		if ended || inv.Scanner == forAddress {
			view.Investigations = append(view.Investigations, InvestigationView{
				Scanner: inv.Scanner,
				Target:  inv.Target,
				Result:  inv.Result,
				Round:   inv.Round,
			})
		}
	}

	phase := g.phase
	g.mu.Unlock()

	// Collaborator reads happen outside g.mu; both stores lock internally.
	if phase == PhaseVoting {
		view.VoteTally = g.votes.GetVoteTally(g.ID)
	}
	view.VoteHistory = g.votes.GetVoteHistory(g.ID)
	if phase.Timed() {
		view.RemainingSeconds = g.scheduler.RemainingSeconds(g.ID)
	}
	return view
}
