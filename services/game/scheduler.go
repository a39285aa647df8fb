package game

import (
	"log"
	"sync"
	"time"
)

// Clock abstracts wall time so tests can drive phase transitions with a
// virtual clock instead of sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancelable pending callback.
type Timer interface {
	Stop() bool
}

// RealClock is the production Clock backed by the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// PhaseEndFunc receives the phase-end notification. Natural expiry and
// ForceEndPhase converge on this one path, so there is exactly one transition
// handler per phase-end event.
type PhaseEndFunc func(gameID string, phase Phase)

// PhaseScheduler decouples how long a phase lasts from what happens when it
// ends. One pending timer per game, always canceled before a new one is
// armed. The scheduler holds no game logic.
type PhaseScheduler struct {
	mu         sync.Mutex
	clock      Clock
	onPhaseEnd PhaseEndFunc
	entries    map[string]*scheduleEntry
	seq        uint64
}

type scheduleEntry struct {
	phase     Phase
	timer     Timer
	startedAt time.Time
	duration  time.Duration
	seq       uint64
}

func NewPhaseScheduler(clock Clock, onPhaseEnd PhaseEndFunc) *PhaseScheduler {
	return &PhaseScheduler{
		clock:      clock,
		onPhaseEnd: onPhaseEnd,
		entries:    map[string]*scheduleEntry{},
	}
}

// StartPhase (re)arms the single timer for the game. Any prior pending timer
// is canceled first, so overlapping timers cannot double-fire a transition.
// Zero-duration phases (Lobby, End) never arm a timer.
func (ps *PhaseScheduler) StartPhase(gameID string, phase Phase, duration time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.cancelLocked(gameID)
	if duration <= 0 {
		return
	}

	ps.seq++
	entry := &scheduleEntry{
		phase:     phase,
		startedAt: ps.clock.Now(),
		duration:  duration,
		seq:       ps.seq,
	}
	seq := entry.seq
	entry.timer = ps.clock.AfterFunc(duration, func() {
		ps.expire(gameID, seq)
	})
	ps.entries[gameID] = entry

	log.Printf("[SCHEDULER] Armed %s timer for game %s (%s)", phase, gameID, duration)
}

// expire fires the phase-end notification if the timer is still the current
// one for the game. A canceled-but-already-firing timer is a stale event and
// is dropped here, mirroring the stale-round guards of the transition code.
func (ps *PhaseScheduler) expire(gameID string, seq uint64) {
	ps.mu.Lock()
	entry, ok := ps.entries[gameID]
	if !ok || entry.seq != seq {
		ps.mu.Unlock()
		return
	}
	phase := entry.phase
	delete(ps.entries, gameID)
	ps.mu.Unlock()

	ps.onPhaseEnd(gameID, phase)
}

// ForceEndPhase immediately fires the same notification path as natural
// expiry. Returns false when no timer is pending.
func (ps *PhaseScheduler) ForceEndPhase(gameID string) bool {
	ps.mu.Lock()
	entry, ok := ps.entries[gameID]
	if !ok {
		ps.mu.Unlock()
		return false
	}
	entry.timer.Stop()
	phase := entry.phase
	delete(ps.entries, gameID)
	ps.mu.Unlock()

	log.Printf("[SCHEDULER] Forced end of %s for game %s", phase, gameID)
	ps.onPhaseEnd(gameID, phase)
	return true
}

// RemainingSeconds reports the wall-clock time left on the pending timer,
// clamped to >=0 and ceiling-rounded for display. Zero when nothing pending.
func (ps *PhaseScheduler) RemainingSeconds(gameID string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	entry, ok := ps.entries[gameID]
	if !ok {
		return 0
	}
	remaining := entry.duration - ps.clock.Now().Sub(entry.startedAt)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// Cleanup cancels any pending timer and frees the game's scheduling state.
// Idempotent.
func (ps *PhaseScheduler) Cleanup(gameID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.cancelLocked(gameID)
}

func (ps *PhaseScheduler) cancelLocked(gameID string) {
	if entry, ok := ps.entries[gameID]; ok {
		entry.timer.Stop()
		delete(ps.entries, gameID)
	}
}
