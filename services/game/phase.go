package game

// Phase is one of the five sequential stages of a match.
type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseDiscussion Phase = "discussion"
	PhaseVoting     Phase = "voting"
	PhaseResolution Phase = "resolution"
	PhaseEnd        Phase = "end"
)

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether moving from p to target is a legal phase
// transition. The only legal sequence is
// Lobby -> Discussion -> (Voting -> Resolution -> [Discussion|End])*.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:      {PhaseDiscussion},
		PhaseDiscussion: {PhaseVoting},
		PhaseVoting:     {PhaseResolution},
		PhaseResolution: {PhaseDiscussion, PhaseEnd},
		PhaseEnd:        {},
	}

	for _, next := range validTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

// Timed reports whether the phase runs on a countdown. Lobby and End never
// arm a timer; Resolution is computed synchronously at Voting expiry.
func (p Phase) Timed() bool {
	return p == PhaseDiscussion || p == PhaseVoting
}
