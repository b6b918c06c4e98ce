package turn

// Phase tags what a turn event describes beyond the scheduler state.
type Phase string

const (
	PhaseStateChange Phase = "state_change" // scheduler entered Event.State
	PhaseTurnStart   Phase = "turn_start"   // Acting's turn began
	PhaseTurnAction  Phase = "turn_action"  // Acting finished TakeTurn
	PhaseTurnEnd     Phase = "turn_end"     // Acting's turn ended
)

// Event is a turn-system notification: the turn number, the scheduler state
// it was emitted in, and the acting entity when one is relevant.
type Event struct {
	TurnNumber int
	State      State
	Phase      Phase
	Acting     Entity // nil for pure state changes
}

// Observer receives turn events. Delivery is synchronous and in
// subscription order; observers must not mutate the scheduler re-entrantly
// from a callback.
type Observer interface {
	OnTurnEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnTurnEvent calls f.
func (f ObserverFunc) OnTurnEvent(e Event) { f(e) }
