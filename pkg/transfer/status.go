package transfer

// State is the lifecycle position of a flashing session
type State int

const (
	StateInit State = iota
	StateValidated
	StateIdentified
	StateTransferring
	StateDone
	StateFailed
)

// String returns a human-readable string representation of the state
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateValidated:
		return "validated"
	case StateIdentified:
		return "identified"
	case StateTransferring:
		return "transferring"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the state is final (done or failed)
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransitionTo checks if a state transition is valid
func (s State) CanTransitionTo(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}

	switch s {
	case StateInit:
		return next == StateValidated
	case StateValidated:
		return next == StateIdentified
	case StateIdentified:
		return next == StateTransferring
	case StateTransferring:
		return next == StateDone
	default:
		return false
	}
}
