package game

import (
	"sort"
	"sync"
	"time"
)

// Vote is one live ballot. A voter has at most one live vote per round; a
// repeat submission replaces the prior one (last-write-wins).
type Vote struct {
	Voter     string    `json:"voter"`
	Target    string    `json:"target"`
	Timestamp time.Time `json:"timestamp"`
}

// RoundVoteHistory is the immutable snapshot archived once per resolved
// round. Eliminated is empty when nobody was voted out.
type RoundVoteHistory struct {
	Round      int    `json:"round"`
	Votes      []Vote `json:"votes"`
	Eliminated string `json:"eliminated,omitempty"`
}

// VoteTally keeps per-game vote bookkeeping, independent of the phase logic.
// Live votes are transient per round; the history survives for the lifetime
// of the game object.
type VoteTally struct {
	mu    sync.Mutex
	games map[string]*gameVotes
}

type gameVotes struct {
	votes   map[string]Vote
	order   []string // voter addresses in first-vote order
	history []RoundVoteHistory
}

func NewVoteTally() *VoteTally {
	return &VoteTally{games: map[string]*gameVotes{}}
}

func (vt *VoteTally) gameFor(gameID string) *gameVotes {
	gv, ok := vt.games[gameID]
	if !ok {
		gv = &gameVotes{votes: map[string]Vote{}}
		vt.games[gameID] = gv
	}
	return gv
}

// RecordVote upserts the voter's ballot for the active round.
func (vt *VoteTally) RecordVote(gameID, voter, target string) {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	gv := vt.gameFor(gameID)
	if _, voted := gv.votes[voter]; !voted {
		gv.order = append(gv.order, voter)
	}
	gv.votes[voter] = Vote{Voter: voter, Target: target, Timestamp: time.Now()}
}

// ResolveVotes tallies the live votes and returns the eliminated address.
// A unique maximum wins outright; a tie among k>=2 leaders is broken
// uniformly at random among the tied set. Zero votes means no elimination
// (returns "", false).
func (vt *VoteTally) ResolveVotes(gameID string) (string, bool) {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	gv := vt.gameFor(gameID)
	if len(gv.votes) == 0 {
		return "", false
	}

	counts := map[string]int{}
	for _, v := range gv.votes {
		counts[v.Target]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	var leaders []string
	for target, c := range counts {
		if c == maxCount {
			leaders = append(leaders, target)
		}
	}
	// Deterministic iteration order before the random draw, so the draw is
	// uniform over the tied set and nothing else.
	sort.Strings(leaders)

	return leaders[randIntn(len(leaders))], true
}

// ArchiveRoundVotes snapshots the live votes into the permanent history and
// clears them for the next round.
func (vt *VoteTally) ArchiveRoundVotes(gameID string, round int, eliminated string) {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	gv := vt.gameFor(gameID)
	snapshot := RoundVoteHistory{Round: round, Eliminated: eliminated}
	for _, voter := range gv.order {
		snapshot.Votes = append(snapshot.Votes, gv.votes[voter])
	}
	gv.history = append(gv.history, snapshot)

	gv.votes = map[string]Vote{}
	gv.order = nil
}

// GetVoteTally returns target -> live vote count.
func (vt *VoteTally) GetVoteTally(gameID string) map[string]int {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	counts := map[string]int{}
	for _, v := range vt.gameFor(gameID).votes {
		counts[v.Target]++
	}
	return counts
}

// GetVoteRecords returns the live votes in first-vote order.
func (vt *VoteTally) GetVoteRecords(gameID string) []Vote {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	gv := vt.gameFor(gameID)
	records := make([]Vote, 0, len(gv.order))
	for _, voter := range gv.order {
		records = append(records, gv.votes[voter])
	}
	return records
}

// GetVoteHistory returns the archived per-round snapshots.
func (vt *VoteTally) GetVoteHistory(gameID string) []RoundVoteHistory {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	gv := vt.gameFor(gameID)
	history := make([]RoundVoteHistory, len(gv.history))
	copy(history, gv.history)
	return history
}

// ClearLiveVotes drops the live votes without archiving (used when a round's
// vote state is reset on entering Voting). History is untouched.
func (vt *VoteTally) ClearLiveVotes(gameID string) {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	gv := vt.gameFor(gameID)
	gv.votes = map[string]Vote{}
	gv.order = nil
}

// Cleanup removes every trace of the game, history included. Idempotent.
func (vt *VoteTally) Cleanup(gameID string) {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	delete(vt.games, gameID)
}
