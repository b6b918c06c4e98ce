// Package turn sequences the battle: whose turn it is, phase transitions,
// and turn-event notifications. The scheduler is step-driven and
// single-threaded; it advances only when its public methods are called.
package turn

import "github.com/google/uuid"

// Entity is the capability set every scheduled combatant implements. The
// scheduler holds only non-owning registrations by handle: an entity that
// is destroyed externally (death, despawn) must be unregistered first, or
// the dangling reference is a contract violation on the caller.
type Entity interface {
	// Handle returns the stable identifier used for registration.
	Handle() uuid.UUID
	// EntityName is a display name for logs and events.
	EntityName() string
	// IsActive reports whether the entity takes turns at all. Inactive
	// entities stay registered but are skipped.
	IsActive() bool

	ActionPoints() int
	MaxActionPoints() int
	// ConsumeActionPoints spends n points, reporting false (and spending
	// nothing) when fewer than n remain.
	ConsumeActionPoints(n int) bool

	// TakeTurn performs the entity's action for this round.
	TakeTurn()
	// OnTurnStart and OnTurnEnd bracket the entity's turn; the scheduler
	// calls them in strict order around TakeTurn.
	OnTurnStart()
	OnTurnEnd()
}

// State is the scheduler's phase. Exactly one value is active at a time and
// transitions are the only way it changes.
type State uint8

const (
	StatePlayerTurn State = iota
	StateNPCTurn
	StateProcessing
	StatePaused
)

// String returns the state's display name.
func (s State) String() string {
	switch s {
	case StatePlayerTurn:
		return "PlayerTurn"
	case StateNPCTurn:
		return "NPCTurn"
	case StateProcessing:
		return "Processing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}
