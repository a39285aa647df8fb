package game

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kamalbuilds/pizza-panic-sub000/config"
)

// Game is the authoritative state machine for one match. Every mutation goes
// through its methods and is serialized by one mutex, so action handlers are
// atomic and totally ordered within a game. Expected rejections (wrong phase,
// dead player, duplicate join) come back as false, never as panics: a burst
// of racing agent actions must degrade gracefully.
type Game struct {
	emitter

	mu sync.Mutex

	ID        string
	cfg       *config.GameConfig
	stakes    string
	chainOpts json.RawMessage

	phase  Phase
	round  int
	result Result

	players map[string]*Player
	order   []string // join order

	messages         []Message
	investigations   []InvestigationRecord
	scannedThisRound map[string]bool
	eliminations     []Elimination
	commitments      map[string]string

	roles     *RoleAssigner
	votes     *VoteTally
	oracle    *InvestigationOracle
	scheduler *PhaseScheduler

	createdAt time.Time
	startedAt time.Time
	endedAt   time.Time
	cleaned   bool
}

// NewGame constructs a game in Lobby. A nil or degenerate configuration is a
// programmer/config mistake and fails loudly here, unlike routine gameplay
// rejections.
func NewGame(id string, cfg *config.GameConfig, stakes string, chainOpts json.RawMessage,
	roles *RoleAssigner, votes *VoteTally, oracle *InvestigationOracle, scheduler *PhaseScheduler) (*Game, error) {

	if id == "" {
		return nil, fmt.Errorf("game id must not be empty")
	}
	if cfg == nil {
		return nil, fmt.Errorf("game %s: configuration is nil", id)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("game %s: %w", id, err)
	}
	if n := cfg.ImpostorCountFor(cfg.MinPlayers); n <= 0 || n >= cfg.MinPlayers {
		return nil, fmt.Errorf("game %s: impostor count %d invalid for %d players", id, n, cfg.MinPlayers)
	}

	return &Game{
		ID:               id,
		cfg:              cfg,
		stakes:           stakes,
		chainOpts:        chainOpts,
		phase:            PhaseLobby,
		result:           ResultOngoing,
		players:          map[string]*Player{},
		scannedThisRound: map[string]bool{},
		commitments:      map[string]string{},
		roles:            roles,
		votes:            votes,
		oracle:           oracle,
		scheduler:        scheduler,
		createdAt:        time.Now(),
	}, nil
}

// AddPlayer admits an agent to the lobby. Legal only in Lobby, only once per
// address, only below capacity.
func (g *Game) AddPlayer(address, name string) bool {
	g.mu.Lock()
	if g.phase != PhaseLobby {
		g.mu.Unlock()
		log.Printf("[JOIN-REJECT] game %s: join by %s outside lobby (phase %s)", g.ID, address, g.phase)
		return false
	}
	if address == "" {
		g.mu.Unlock()
		return false
	}
	if _, exists := g.players[address]; exists {
		g.mu.Unlock()
		log.Printf("[JOIN-REJECT] game %s: duplicate join by %s", g.ID, address)
		return false
	}
	if len(g.players) >= g.cfg.MaxPlayers {
		g.mu.Unlock()
		log.Printf("[JOIN-REJECT] game %s: full (%d players)", g.ID, g.cfg.MaxPlayers)
		return false
	}

	g.players[address] = &Player{Address: address, Name: name, Alive: true, JoinedAt: time.Now()}
	g.order = append(g.order, address)
	count := len(g.players)
	g.mu.Unlock()

	g.emit(g.event(EventPlayerJoined, PlayerJoinedPayload{Address: address, Name: name, PlayerCount: count}))
	return true
}

// RemovePlayer withdraws an agent. Legal only in Lobby; once the game has
// started the roster is locked and eliminated players are retained.
func (g *Game) RemovePlayer(address string) bool {
	g.mu.Lock()
	if g.phase != PhaseLobby {
		g.mu.Unlock()
		return false
	}
	if _, exists := g.players[address]; !exists {
		g.mu.Unlock()
		return false
	}

	delete(g.players, address)
	for i, a := range g.order {
		if a == address {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	count := len(g.players)
	g.mu.Unlock()

	g.emit(g.event(EventPlayerLeft, PlayerLeftPayload{Address: address, PlayerCount: count}))
	return true
}

// ErrInsufficientPlayers is the routine start rejection; anything else out of
// Start is a configuration or assignment failure.
var ErrInsufficientPlayers = fmt.Errorf("not enough players to start")

// Start locks the roster, assigns roles, publishes commitments and enters
// Discussion round 1.
func (g *Game) Start() error {
	g.mu.Lock()
	if g.phase != PhaseLobby {
		g.mu.Unlock()
		return fmt.Errorf("game %s: cannot start in phase %s", g.ID, g.phase)
	}
	if len(g.players) < g.cfg.MinPlayers {
		g.mu.Unlock()
		return ErrInsufficientPlayers
	}

	impostorCount := g.cfg.ImpostorCountFor(len(g.players))
	assignments, err := g.roles.AssignRoles(g.order, impostorCount)
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("game %s: role assignment failed: %w", g.ID, err)
	}
	commitments, err := g.roles.GenerateCommitments(g.ID, assignments)
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("game %s: commitment generation failed: %w", g.ID, err)
	}

	for address, role := range assignments {
		g.players[address].Role = role
	}
	g.commitments = commitments
	g.round = 1
	g.setPhaseLocked(PhaseDiscussion)
	g.startedAt = time.Now()
	g.scannedThisRound = map[string]bool{}

	players := make([]string, len(g.order))
	copy(players, g.order)
	discussionSeconds := int(g.cfg.DiscussionDuration.Seconds())
	g.mu.Unlock()

	// Arm the timer before broadcasting so clients receive a live countdown.
	g.scheduler.StartPhase(g.ID, PhaseDiscussion, g.cfg.DiscussionDuration)

	g.emit(
		g.event(EventGameStarted, GameStartedPayload{
			Round:             1,
			Players:           players,
			Commitments:       commitments,
			DiscussionSeconds: discussionSeconds,
		}),
		g.event(EventPhaseChange, PhaseChangePayload{Phase: PhaseDiscussion, Round: 1, Seconds: discussionSeconds}),
	)
	log.Printf("[GAME-START] game %s started with %d players (%d saboteurs)", g.ID, len(players), impostorCount)
	return nil
}

// SubmitMessage appends a discussion message. Legal only for a living player
// during Discussion. The core applies no rate limiting.
func (g *Game) SubmitMessage(address, content string) bool {
	g.mu.Lock()
	if g.phase != PhaseDiscussion || content == "" {
		g.mu.Unlock()
		return false
	}
	p, ok := g.players[address]
	if !ok || !p.Alive {
		g.mu.Unlock()
		return false
	}

	msg := Message{Address: address, Content: content, Round: g.round, Timestamp: time.Now()}
	g.messages = append(g.messages, msg)
	g.mu.Unlock()

	g.emit(g.event(EventMessage, MessagePayload{Message: msg}))
	return true
}

// Investigate runs one noisy role check. Legal only during Discussion, both
// parties alive, no self-scans, at most one scan per scanner per round. The
// returned result is the reported one; accuracy is never disclosed here.
func (g *Game) Investigate(scanner, target string) (InvestigationResult, bool) {
	g.mu.Lock()
	if g.phase != PhaseDiscussion || scanner == target {
		g.mu.Unlock()
		return "", false
	}
	s, ok := g.players[scanner]
	if !ok || !s.Alive {
		g.mu.Unlock()
		return "", false
	}
	t, ok := g.players[target]
	if !ok || !t.Alive {
		g.mu.Unlock()
		return "", false
	}
	if g.scannedThisRound[scanner] {
		g.mu.Unlock()
		log.Printf("[SCAN-REJECT] game %s: %s already investigated this round", g.ID, scanner)
		return "", false
	}

	record := g.oracle.Investigate(scanner, target, t.Role, g.round)
	g.investigations = append(g.investigations, record)
	g.scannedThisRound[scanner] = true
	g.mu.Unlock()

	g.emit(g.event(EventInvestigation, InvestigationPayload{
		Scanner: record.Scanner,
		Target:  record.Target,
		Result:  record.Result,
		Round:   record.Round,
	}))
	return record.Result, true
}

// SubmitVote records (or replaces) the voter's ballot. Legal only during
// Voting, both parties alive, no self-votes.
func (g *Game) SubmitVote(voter, target string) bool {
	g.mu.Lock()
	if g.phase != PhaseVoting || voter == target {
		g.mu.Unlock()
		return false
	}
	v, ok := g.players[voter]
	if !ok || !v.Alive {
		g.mu.Unlock()
		return false
	}
	t, ok := g.players[target]
	if !ok || !t.Alive {
		g.mu.Unlock()
		return false
	}
	// Record under g.mu so a phase-end racing this ballot either sees it
	// fully (counted and archived) or not at all.
	round := g.round
	g.votes.RecordVote(g.ID, voter, target)
	g.mu.Unlock()

	g.emit(g.event(EventVoteCast, VoteCastPayload{Voter: voter, Target: target, Round: round}))
	return true
}

// ForceEndPhase ends the current timed phase immediately, for administrative
// or test-driven early termination. Same transition path as natural expiry.
func (g *Game) ForceEndPhase() bool {
	return g.scheduler.ForceEndPhase(g.ID)
}

// HandlePhaseEnd is the single phase-end notification handler, invoked by the
// scheduler on expiry or forced end. A notification that no longer matches
// the current phase is stale and is dropped.
func (g *Game) HandlePhaseEnd(phase Phase) {
	g.mu.Lock()
	if g.result != ResultOngoing || g.phase != phase {
		log.Printf("[PHASE-END-WARN] game %s: stale phase-end for %s (current %s), ignoring", g.ID, phase, g.phase)
		g.mu.Unlock()
		return
	}

	switch phase {
	case PhaseDiscussion:
		g.setPhaseLocked(PhaseVoting)
		round := g.round
		// Entering Voting resets the round's vote bookkeeping, before any
		// ballot can observe the new phase.
		g.votes.ClearLiveVotes(g.ID)
		g.mu.Unlock()

		votingSeconds := int(g.cfg.VotingDuration.Seconds())
		g.scheduler.StartPhase(g.ID, PhaseVoting, g.cfg.VotingDuration)
		g.emit(g.event(EventPhaseChange, PhaseChangePayload{Phase: PhaseVoting, Round: round, Seconds: votingSeconds}))

	case PhaseVoting:
		// Resolution is computed, near-instantaneous: run it right here.
		g.setPhaseLocked(PhaseResolution)
		round := g.round
		events := []Event{g.event(EventPhaseChange, PhaseChangePayload{Phase: PhaseResolution, Round: round})}
		events = append(events, g.resolveRoundLocked()...)
		g.mu.Unlock()

		g.emit(events...)

	default:
		g.mu.Unlock()
		log.Printf("[PHASE-END-WARN] game %s: unexpected phase-end for %s", g.ID, phase)
	}
}

// setPhaseLocked switches phases after asserting the move is legal. An
// illegal target means a bug in the transition logic itself, so it fails
// loudly in the log but still applies (the machine must not wedge mid-match).
func (g *Game) setPhaseLocked(target Phase) {
	if !g.phase.CanTransitionTo(target) {
		log.Printf("[PHASE-ERROR] game %s: illegal transition %s -> %s", g.ID, g.phase, target)
	}
	g.phase = target
}

// resolveRoundLocked runs the Resolution phase: tally, eliminate, archive,
// win check, then either next round or End. Caller holds g.mu; the returned
// events are emitted after unlock.
func (g *Game) resolveRoundLocked() []Event {
	var events []Event

	eliminated, someoneOut := g.votes.ResolveVotes(g.ID)
	voteCounts := g.votes.GetVoteTally(g.ID)

	if someoneOut {
		p := g.players[eliminated]
		p.Alive = false
		elim := Elimination{Address: eliminated, Role: p.Role, Round: g.round, Timestamp: time.Now()}
		g.eliminations = append(g.eliminations, elim)

		salt, _ := g.roles.GetSalt(g.ID, eliminated)
		events = append(events, g.event(EventElimination, EliminationPayload{
			Address:    eliminated,
			Role:       p.Role,
			Salt:       salt,
			Commitment: g.commitments[eliminated],
			Round:      g.round,
			VoteCount:  voteCounts[eliminated],
		}))
		log.Printf("[RESOLUTION] game %s round %d: %s eliminated (%s)", g.ID, g.round, eliminated, p.Role)
	} else {
		events = append(events, g.event(EventNoElimination, NoEliminationPayload{Round: g.round}))
		log.Printf("[RESOLUTION] game %s round %d: no elimination", g.ID, g.round)
	}

	g.votes.ArchiveRoundVotes(g.ID, g.round, eliminated)

	result := g.evaluateWinLocked()
	if result == ResultOngoing {
		g.round++
		g.setPhaseLocked(PhaseDiscussion)
		g.scannedThisRound = map[string]bool{}
		discussionSeconds := int(g.cfg.DiscussionDuration.Seconds())
		g.scheduler.StartPhase(g.ID, PhaseDiscussion, g.cfg.DiscussionDuration)
		events = append(events, g.event(EventPhaseChange, PhaseChangePayload{
			Phase: PhaseDiscussion, Round: g.round, Seconds: discussionSeconds,
		}))
		return events
	}

	g.result = result
	g.setPhaseLocked(PhaseEnd)
	g.endedAt = time.Now()
	g.cleanupLocked()

	events = append(events,
		g.event(EventPhaseChange, PhaseChangePayload{Phase: PhaseEnd, Round: g.round}),
		g.event(EventGameEnd, g.gameEndPayloadLocked()),
	)
	log.Printf("[GAME-END] game %s ended after round %d: %s", g.ID, g.round, result)
	return events
}

// evaluateWinLocked applies the win-condition order: crew sweep, saboteur
// parity, then the round limit — which deliberately rules for the Crew
// rather than the survive-to-the-end saboteur convention.
func (g *Game) evaluateWinLocked() Result {
	livingSaboteurs, livingChefs := 0, 0
	for _, p := range g.players {
		if !p.Alive {
			continue
		}
		if p.Role == RoleSaboteur {
			livingSaboteurs++
		} else {
			livingChefs++
		}
	}

	switch {
	case livingSaboteurs == 0:
		return ResultCrewWin
	case livingSaboteurs >= livingChefs:
		return ResultSaboteurWin
	case g.round >= g.cfg.MaxRounds:
		return ResultCrewWin
	default:
		return ResultOngoing
	}
}

// gameEndPayloadLocked builds the post-game disclosure: full role reveals and
// the investigation accuracy statistics withheld during play.
func (g *Game) gameEndPayloadLocked() GameEndPayload {
	reveals := make([]RoleReveal, 0, len(g.order))
	for _, address := range g.order {
		salt, _ := g.roles.GetSalt(g.ID, address)
		reveals = append(reveals, RoleReveal{
			Address:    address,
			Role:       g.players[address].Role,
			Salt:       salt,
			Commitment: g.commitments[address],
		})
	}

	accurate := 0
	for _, inv := range g.investigations {
		if inv.Accurate {
			accurate++
		}
	}

	return GameEndPayload{
		Result:                 g.result,
		Rounds:                 g.round,
		Reveals:                reveals,
		AccurateInvestigations: accurate,
		TotalInvestigations:    len(g.investigations),
	}
}

// Cleanup releases scheduler resources and clears transient per-round vote
// storage. Durable history (messages, eliminations, vote history,
// investigation log) is retained for the lifetime of the object. Idempotent.
func (g *Game) Cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cleanupLocked()
}

func (g *Game) cleanupLocked() {
	if g.cleaned {
		return
	}
	g.cleaned = true
	g.scheduler.Cleanup(g.ID)
	g.votes.ClearLiveVotes(g.ID)
}

// event stamps a payload with the game id and current time.
func (g *Game) event(t EventType, payload interface{}) Event {
	return Event{Type: t, GameID: g.ID, Timestamp: time.Now(), Payload: payload}
}

// --- read accessors ---

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) Round() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round
}

func (g *Game) Result() Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

func (g *Game) HasPlayer(address string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.players[address]
	return ok
}

func (g *Game) Stakes() string {
	return g.stakes
}

func (g *Game) ChainOptions() json.RawMessage {
	return g.chainOpts
}

// Players returns the roster in join order.
func (g *Game) Players() []Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	roster := make([]Player, 0, len(g.order))
	for _, address := range g.order {
		roster = append(roster, *g.players[address])
	}
	return roster
}

// Messages returns the chronological message log.
func (g *Game) Messages() []Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	msgs := make([]Message, len(g.messages))
	copy(msgs, g.messages)
	return msgs
}

// Eliminations returns the elimination log.
func (g *Game) Eliminations() []Elimination {
	g.mu.Lock()
	defer g.mu.Unlock()
	elims := make([]Elimination, len(g.eliminations))
	copy(elims, g.eliminations)
	return elims
}

// Investigations returns the full internal records, accuracy flags included.
// For post-game analysis and persistence only, never for in-play payloads.
func (g *Game) Investigations() []InvestigationRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	invs := make([]InvestigationRecord, len(g.investigations))
	copy(invs, g.investigations)
	return invs
}

// Commitments returns address -> public commitment hash, sorted by address
// for stable external anchoring.
func (g *Game) Commitments() map[string]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]string, len(g.commitments))
	keys := make([]string, 0, len(g.commitments))
	for k := range g.commitments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = g.commitments[k]
	}
	return out
}

func (g *Game) CreatedAt() time.Time { return g.createdAt }

func (g *Game) StartedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.startedAt
}

func (g *Game) EndedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endedAt
}
