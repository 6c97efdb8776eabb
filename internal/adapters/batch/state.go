package batch

// State is a chunk's position in the write lifecycle:
//
//	Pending -> Sent -> Done
//	                -> PartialFailure -> Sent (after backoff)
//	                                  -> Aborted (retries exhausted)
//
// Any non-terminal state can move to Aborted on cancellation or a store
// error.
type State int

// Chunk states.
const (
	StatePending State = iota
	StateSent
	StatePartialFailure
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSent:
		return "sent"
	case StatePartialFailure:
		return "partial_failure"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// canTransition reports whether from -> to is a legal edge.
func canTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateAborted {
		return true
	}
	switch from {
	case StatePending:
		return to == StateSent
	case StateSent:
		return to == StateDone || to == StatePartialFailure
	case StatePartialFailure:
		return to == StateSent
	}
	return false
}
