package game

import (
	"log"
	"sync"
	"time"
)

// EventType names one of the bounded set of engine notifications.
type EventType string

const (
	EventPlayerJoined  EventType = "player_joined"
	EventPlayerLeft    EventType = "player_left"
	EventGameStarted   EventType = "game_started"
	EventPhaseChange   EventType = "phase_change"
	EventMessage       EventType = "message"
	EventInvestigation EventType = "investigation"
	EventVoteCast      EventType = "vote_cast"
	EventElimination   EventType = "elimination"
	EventNoElimination EventType = "no_elimination"
	EventGameEnd       EventType = "game_end"
)

// Event is a notification emitted by a Game. Payload holds the typed
// per-variant struct below. Consumers never return values to the engine.
type Event struct {
	Type      EventType   `json:"type"`
	GameID    string      `json:"game_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

type PlayerJoinedPayload struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
}

type PlayerLeftPayload struct {
	Address     string `json:"address"`
	PlayerCount int    `json:"player_count"`
}

type GameStartedPayload struct {
	Round             int               `json:"round"`
	Players           []string          `json:"players"`
	Commitments       map[string]string `json:"commitments"`
	DiscussionSeconds int               `json:"discussion_seconds"`
}

type PhaseChangePayload struct {
	Phase   Phase `json:"phase"`
	Round   int   `json:"round"`
	Seconds int   `json:"seconds"`
}

type MessagePayload struct {
	Message
}

// InvestigationPayload carries only the reported result. The accuracy flag is
// internal state and is never part of any event.
type InvestigationPayload struct {
	Scanner string              `json:"scanner"`
	Target  string              `json:"target"`
	Result  InvestigationResult `json:"result"`
	Round   int                 `json:"round"`
}

type VoteCastPayload struct {
	Voter  string `json:"voter"`
	Target string `json:"target"`
	Round  int    `json:"round"`
}

// EliminationPayload reveals the eliminated player's role together with the
// commitment salt so the pre-game commitment can be checked externally.
type EliminationPayload struct {
	Address    string `json:"address"`
	Role       Role   `json:"role"`
	Salt       string `json:"salt"`
	Commitment string `json:"commitment"`
	Round      int    `json:"round"`
	VoteCount  int    `json:"vote_count"`
}

type NoEliminationPayload struct {
	Round int `json:"round"`
}

// RoleReveal is the post-game disclosure for one player.
type RoleReveal struct {
	Address    string `json:"address"`
	Role       Role   `json:"role"`
	Salt       string `json:"salt"`
	Commitment string `json:"commitment"`
}

type GameEndPayload struct {
	Result                 Result       `json:"result"`
	Rounds                 int          `json:"rounds"`
	Reveals                []RoleReveal `json:"reveals"`
	AccurateInvestigations int          `json:"accurate_investigations"`
	TotalInvestigations    int          `json:"total_investigations"`
}

// Listener consumes engine events. Listeners must not block; slow or failing
// consumers never affect game progression.
type Listener func(Event)

// emitter is the typed publish/subscribe fan-out embedded in Game.
type emitter struct {
	mu        sync.RWMutex
	listeners []Listener
}

// Subscribe registers a listener for every subsequent event of this game.
func (e *emitter) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// emit dispatches synchronously, outside the game mutex. A panicking listener
// is logged and skipped so one broken consumer cannot stall the match.
func (e *emitter) emit(events ...Event) {
	e.mu.RLock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, ev := range events {
		for _, l := range listeners {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("[EVENT-ERROR] listener panic on %s for game %s: %v", ev.Type, ev.GameID, r)
					}
				}()
				l(ev)
			}()
		}
	}
}
