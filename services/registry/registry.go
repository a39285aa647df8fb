package registry

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/kamalbuilds/pizza-panic-sub000/config"
	"github.com/kamalbuilds/pizza-panic-sub000/services/game"
	"github.com/kamalbuilds/pizza-panic-sub000/services/persistence"
	"github.com/kamalbuilds/pizza-panic-sub000/services/redis"
	"github.com/kamalbuilds/pizza-panic-sub000/services/settlement"

	"github.com/google/uuid"
)

// Options carries the registry's collaborators. Store, Cache and Settler are
// optional; a nil collaborator disables that concern without affecting play.
type Options struct {
	Config  *config.GameConfig
	Clock   game.Clock
	Store   *persistence.GameStore
	Cache   *redis.RedisClient
	Settler settlement.Notifier
}

// GameRegistry owns every live game and the shared engine components. It
// routes phase-end notifications to the right game, auto-starts filled
// lobbies after a debounce, and reacts to game-end events by persisting,
// caching and settling — all best effort, never blocking play.
type GameRegistry struct {
	mu        sync.Mutex
	cfg       *config.GameConfig
	clock     game.Clock
	games     map[string]*game.Game
	byPlayer  map[string]map[string]bool // address -> set of game ids
	autoStart map[string]game.Timer

	roles     *game.RoleAssigner
	votes     *game.VoteTally
	oracle    *game.InvestigationOracle
	scheduler *game.PhaseScheduler

	store   *persistence.GameStore
	cache   *redis.RedisClient
	settler settlement.Notifier

	listeners []game.Listener
}

func NewGameRegistry(opts Options) (*GameRegistry, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("registry requires a game configuration")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = game.RealClock{}
	}

	r := &GameRegistry{
		cfg:       opts.Config,
		clock:     clock,
		games:     map[string]*game.Game{},
		byPlayer:  map[string]map[string]bool{},
		autoStart: map[string]game.Timer{},
		roles:     game.NewRoleAssigner(),
		votes:     game.NewVoteTally(),
		oracle:    game.NewInvestigationOracle(opts.Config.InvestigationAccuracy),
		store:     opts.Store,
		cache:     opts.Cache,
		settler:   opts.Settler,
	}
	r.scheduler = game.NewPhaseScheduler(clock, r.handlePhaseEnd)
	return r, nil
}

// Subscribe registers a listener attached to every game the registry creates,
// existing games included.
func (r *GameRegistry) Subscribe(l game.Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
	for _, g := range r.games {
		g.Subscribe(l)
	}
}

// CreateGame creates a lobby. Stakes and chain options are opaque pass-through
// values recorded with the game and echoed to settlement.
func (r *GameRegistry) CreateGame(stakes string, chainOpts json.RawMessage) (*game.Game, error) {
	id := uuid.NewString()

	g, err := game.NewGame(id, r.cfg, stakes, chainOpts, r.roles, r.votes, r.oracle, r.scheduler)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	for _, l := range r.listeners {
		g.Subscribe(l)
	}
	g.Subscribe(r.onGameEvent)
	r.games[id] = g
	r.mu.Unlock()

	log.Printf("[REGISTRY] created game %s (stakes=%q)", id, stakes)
	return g, nil
}

// GetGame returns a live game by id.
func (r *GameRegistry) GetGame(id string) (*game.Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	return g, ok
}

// GetAllGames returns every live game.
func (r *GameRegistry) GetAllGames() []*game.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	games := make([]*game.Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	return games
}

// GetGamesByPlayer returns every live game the address participates in,
// served from the player index maintained on join/leave.
func (r *GameRegistry) GetGamesByPlayer(address string) []*game.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []*game.Game
	for id := range r.byPlayer[address] {
		if g, ok := r.games[id]; ok {
			matches = append(matches, g)
		}
	}
	return matches
}

func (r *GameRegistry) indexPlayer(address, gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byPlayer[address] == nil {
		r.byPlayer[address] = map[string]bool{}
	}
	r.byPlayer[address][gameID] = true
}

func (r *GameRegistry) unindexPlayer(address, gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byPlayer[address], gameID)
	if len(r.byPlayer[address]) == 0 {
		delete(r.byPlayer, address)
	}
}

// JoinGame admits the agent and, once the lobby reaches the minimum, arms the
// auto-start debounce. Every later join re-arms it, so a filling lobby starts
// a quiet period after the last arrival.
func (r *GameRegistry) JoinGame(gameID, address, name string) bool {
	g, ok := r.GetGame(gameID)
	if !ok {
		return false
	}
	if !g.AddPlayer(address, name) {
		return false
	}
	r.indexPlayer(address, gameID)

	if g.PlayerCount() >= r.cfg.MinPlayers {
		r.armAutoStart(gameID)
	}
	return true
}

// LeaveGame withdraws a lobby player; dropping below the minimum cancels any
// pending auto-start.
func (r *GameRegistry) LeaveGame(gameID, address string) bool {
	g, ok := r.GetGame(gameID)
	if !ok {
		return false
	}
	if !g.RemovePlayer(address) {
		return false
	}
	r.unindexPlayer(address, gameID)

	if g.PlayerCount() < r.cfg.MinPlayers {
		r.cancelAutoStart(gameID)
	}
	return true
}

// StartGame starts the game immediately, bypassing the auto-start debounce.
func (r *GameRegistry) StartGame(gameID string) error {
	g, ok := r.GetGame(gameID)
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	r.cancelAutoStart(gameID)
	return g.Start()
}

func (r *GameRegistry) armAutoStart(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.autoStart[gameID]; ok {
		t.Stop()
	}
	r.autoStart[gameID] = r.clock.AfterFunc(r.cfg.AutoStartDelay, func() {
		r.autoStartFire(gameID)
	})
	log.Printf("[REGISTRY] game %s auto-start armed (%s)", gameID, r.cfg.AutoStartDelay)
}

func (r *GameRegistry) cancelAutoStart(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.autoStart[gameID]; ok {
		t.Stop()
		delete(r.autoStart, gameID)
	}
}

func (r *GameRegistry) autoStartFire(gameID string) {
	r.mu.Lock()
	delete(r.autoStart, gameID)
	g, ok := r.games[gameID]
	r.mu.Unlock()
	if !ok {
		return
	}

	if err := g.Start(); err != nil {
		// A start raced with leaves or already happened; both are routine.
		log.Printf("[REGISTRY] game %s auto-start skipped: %v", gameID, err)
	}
}

// handlePhaseEnd is the scheduler's single notification path, routed to the
// owning game.
func (r *GameRegistry) handlePhaseEnd(gameID string, phase game.Phase) {
	g, ok := r.GetGame(gameID)
	if !ok {
		log.Printf("[REGISTRY-WARN] phase-end for unknown game %s, ignoring", gameID)
		return
	}
	g.HandlePhaseEnd(phase)
}

// onGameEvent reacts to the registry-relevant events. Persistence, caching
// and settlement failures are logged and swallowed: the match outcome stands
// regardless.
func (r *GameRegistry) onGameEvent(ev game.Event) {
	if ev.Type != game.EventGameEnd {
		return
	}
	end, ok := ev.Payload.(game.GameEndPayload)
	if !ok {
		log.Printf("[REGISTRY-ERROR] game %s: unexpected game-end payload %T", ev.GameID, ev.Payload)
		return
	}

	g, ok := r.GetGame(ev.GameID)
	if !ok {
		return
	}

	if r.store != nil {
		if record, err := persistence.CompletedGameRecord(g, end); err != nil {
			log.Printf("[REGISTRY-ERROR] game %s: building record: %v", ev.GameID, err)
		} else if err := r.store.SaveCompletedGame(record); err != nil {
			log.Printf("[REGISTRY-ERROR] game %s: saving record: %v", ev.GameID, err)
		} else if err := r.store.RecordGameOutcome(end, g.Players()); err != nil {
			log.Printf("[REGISTRY-ERROR] game %s: updating profiles: %v", ev.GameID, err)
		}
	}

	if r.cache != nil {
		summary := redis.GameSummary{
			ID:      g.ID,
			Result:  string(end.Result),
			Rounds:  end.Rounds,
			Stakes:  g.Stakes(),
			EndedAt: g.EndedAt(),
		}
		for _, p := range g.Players() {
			summary.Players = append(summary.Players, p.Address)
		}
		if err := r.cache.PushRecentGame(summary); err != nil {
			log.Printf("[REGISTRY-ERROR] game %s: caching summary: %v", ev.GameID, err)
		}
	}

	if r.settler != nil {
		if err := r.settler.NotifyGameEnd(settlement.BuildOutcome(g, end)); err != nil {
			log.Printf("[REGISTRY-ERROR] game %s: settlement notify: %v", ev.GameID, err)
		}
	}
}

// RemoveGame detaches the game from every index and purges its trace from
// the shared components, commit-reveal secrets included. The Game object
// itself is left untouched for anyone still holding a reference. Safe to
// call twice.
func (r *GameRegistry) RemoveGame(gameID string) {
	r.mu.Lock()
	g, ok := r.games[gameID]
	delete(r.games, gameID)
	if t, pending := r.autoStart[gameID]; pending {
		t.Stop()
		delete(r.autoStart, gameID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	for _, p := range g.Players() {
		r.unindexPlayer(p.Address, gameID)
	}
	r.scheduler.Cleanup(gameID)
	r.roles.CleanupGame(gameID)
	r.votes.Cleanup(gameID)
	log.Printf("[REGISTRY] removed game %s", gameID)
}

// Config exposes the registry's game configuration.
func (r *GameRegistry) Config() *config.GameConfig {
	return r.cfg
}

// Store exposes the persistence store; nil when persistence is disabled.
func (r *GameRegistry) Store() *persistence.GameStore {
	return r.store
}

// Cache exposes the Redis cache; nil when caching is disabled.
func (r *GameRegistry) Cache() *redis.RedisClient {
	return r.cache
}
