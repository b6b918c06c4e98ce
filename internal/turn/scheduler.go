package turn

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrPlayerSlotTaken is reported when a second, different entity is
// registered as the player.
var ErrPlayerSlotTaken = errors.New("turn: player slot already taken")

// Scheduler drives the PlayerTurn → NPCTurn → Processing → PlayerTurn cycle.
//
// Registration is idempotent and safe at any time; additions and removals
// take effect at the next phase boundary (the NPC roster is snapshotted when
// NPCTurn begins, and removed or deactivated entities are skipped when their
// slot comes up). The player occupies a dedicated single slot rather than
// being found by scanning the roster.
type Scheduler struct {
	entities []Entity
	byHandle map[uuid.UUID]Entity
	player   *uuid.UUID // single-slot player handle; nil until registered

	state      State
	pausedFrom State // phase to resume into
	turnNumber int

	// NPC iteration state for the current NPCTurn. Survives pausing.
	roster []uuid.UUID
	cursor int

	// StepDelay paces NPC turns for presentation. Zero means NPCTurn drains
	// synchronously inside EndPlayerTurn; a positive delay defers each NPC
	// to a later Tick call. Either way the observable turn sequence is the
	// same.
	StepDelay   time.Duration
	nextAdvance time.Time

	// Processing is an environment-effects hook run once per cycle between
	// the last NPC and the next player turn. May be nil.
	Processing func(turnNumber int)

	observers []Observer
}

// NewScheduler creates a scheduler in PlayerTurn with turn number 1.
func NewScheduler() *Scheduler {
	return &Scheduler{
		byHandle:   make(map[uuid.UUID]Entity),
		state:      StatePlayerTurn,
		turnNumber: 1,
	}
}

// State returns the current phase.
func (s *Scheduler) State() State { return s.state }

// TurnNumber returns the current turn counter. It increments once per full
// cycle, on re-entering PlayerTurn, and never decreases.
func (s *Scheduler) TurnNumber() int { return s.turnNumber }

// SetTurnNumber restores the counter when resuming a saved battle.
// It refuses to move the counter backwards.
func (s *Scheduler) SetTurnNumber(n int) {
	if n > s.turnNumber {
		s.turnNumber = n
	}
}

// Subscribe adds an observer. Events are delivered synchronously, in
// subscription order.
func (s *Scheduler) Subscribe(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// RegisterEntity adds an entity to the roster in registration order.
// Registering an already-registered entity is a no-op, not an error.
func (s *Scheduler) RegisterEntity(e Entity) {
	if e == nil {
		return
	}
	if _, ok := s.byHandle[e.Handle()]; ok {
		return
	}
	s.byHandle[e.Handle()] = e
	s.entities = append(s.entities, e)
}

// RegisterPlayer registers an entity and claims the player slot for it.
// A second registration of the same entity is a no-op; claiming the slot
// for a different entity is rejected.
func (s *Scheduler) RegisterPlayer(e Entity) error {
	if e == nil {
		return nil
	}
	if s.player != nil {
		if *s.player == e.Handle() {
			return nil
		}
		return ErrPlayerSlotTaken
	}
	s.RegisterEntity(e)
	h := e.Handle()
	s.player = &h
	return nil
}

// UnregisterEntity removes an entity. Unregistering an absent entity is a
// no-op. Removal is safe at any time: an in-flight NPCTurn simply skips the
// vacated slot.
func (s *Scheduler) UnregisterEntity(handle uuid.UUID) {
	if _, ok := s.byHandle[handle]; !ok {
		return
	}
	delete(s.byHandle, handle)
	for i, e := range s.entities {
		if e.Handle() == handle {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	if s.player != nil && *s.player == handle {
		s.player = nil
	}
}

// Registered reports whether a handle is currently on the roster.
func (s *Scheduler) Registered(handle uuid.UUID) bool {
	_, ok := s.byHandle[handle]
	return ok
}

// RosterSize returns the number of registered entities.
func (s *Scheduler) RosterSize() int { return len(s.entities) }

// PlayerEntity returns the registered player, or nil.
func (s *Scheduler) PlayerEntity() Entity {
	if s.player == nil {
		return nil
	}
	return s.byHandle[*s.player]
}

// EndPlayerTurn finishes the player's turn and enters NPCTurn. Calling it
// in any other phase is a rejected no-op, reported via the return value.
// With a zero StepDelay the whole NPC round and Processing run before this
// returns; otherwise NPCs advance on subsequent Tick calls.
func (s *Scheduler) EndPlayerTurn() bool {
	if s.state != StatePlayerTurn {
		slog.Warn("EndPlayerTurn rejected", "state", s.state.String())
		return false
	}

	if p := s.PlayerEntity(); p != nil {
		p.OnTurnEnd()
		s.emit(Event{TurnNumber: s.turnNumber, State: s.state, Phase: PhaseTurnEnd, Acting: p})
	}

	// Snapshot the NPC roster in registration order. Entities added during
	// the round wait for the next cycle.
	s.roster = s.roster[:0]
	for _, e := range s.entities {
		if s.player != nil && e.Handle() == *s.player {
			continue
		}
		s.roster = append(s.roster, e.Handle())
	}
	s.cursor = 0
	s.setState(StateNPCTurn)

	if s.StepDelay <= 0 {
		for s.state == StateNPCTurn {
			s.advanceOne()
		}
	} else {
		s.nextAdvance = time.Now().Add(s.StepDelay)
	}
	return true
}

// Tick advances a paced NPCTurn when the inter-NPC delay has elapsed.
// In any other phase, or before the delay expires, it is a no-op.
func (s *Scheduler) Tick(now time.Time) {
	if s.state != StateNPCTurn || s.StepDelay <= 0 {
		return
	}
	if now.Before(s.nextAdvance) {
		return
	}
	s.advanceOne()
	s.nextAdvance = now.Add(s.StepDelay)
}

// SetPaused pauses or resumes the cycle. Pausing is reachable from any
// non-Paused phase and preserves NPC iteration state; resuming returns to
// the interrupted phase with the NPC cursor intact, so no phase is skipped.
func (s *Scheduler) SetPaused(paused bool) {
	if paused {
		if s.state == StatePaused {
			return
		}
		s.pausedFrom = s.state
		s.setState(StatePaused)
		return
	}
	if s.state != StatePaused {
		return
	}
	resumed := s.pausedFrom
	s.setState(resumed)
	if resumed == StateNPCTurn && s.StepDelay > 0 {
		s.nextAdvance = time.Now().Add(s.StepDelay)
	}
}

// advanceOne processes the NPC under the cursor, or finishes the round when
// the roster is exhausted. Inactive and vacated slots are skipped.
func (s *Scheduler) advanceOne() {
	for s.cursor < len(s.roster) {
		e, ok := s.byHandle[s.roster[s.cursor]]
		s.cursor++
		if !ok || !e.IsActive() {
			continue
		}

		e.OnTurnStart()
		s.emit(Event{TurnNumber: s.turnNumber, State: s.state, Phase: PhaseTurnStart, Acting: e})
		e.TakeTurn()
		s.emit(Event{TurnNumber: s.turnNumber, State: s.state, Phase: PhaseTurnAction, Acting: e})
		e.OnTurnEnd()
		s.emit(Event{TurnNumber: s.turnNumber, State: s.state, Phase: PhaseTurnEnd, Acting: e})
		return
	}
	s.finishRound()
}

// finishRound runs Processing, increments the turn counter, and hands the
// cycle back to the player.
func (s *Scheduler) finishRound() {
	s.setState(StateProcessing)
	if s.Processing != nil {
		s.Processing(s.turnNumber)
	}

	s.turnNumber++
	s.setState(StatePlayerTurn)
	if p := s.PlayerEntity(); p != nil {
		p.OnTurnStart()
		s.emit(Event{TurnNumber: s.turnNumber, State: s.state, Phase: PhaseTurnStart, Acting: p})
	}
}

// emit delivers an event to every observer, synchronously, in
// subscription order.
func (s *Scheduler) emit(e Event) {
	for _, o := range s.observers {
		o.OnTurnEvent(e)
	}
}

func (s *Scheduler) setState(next State) {
	s.state = next
	slog.Debug("scheduler state", "state", next.String(), "turn", s.turnNumber)
	s.emit(Event{TurnNumber: s.turnNumber, State: next, Phase: PhaseStateChange})
}
