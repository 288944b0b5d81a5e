package engine

// State is a step of the decode and translate state machine.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_FETCH    = State(0) // fetch
	STATE_CLASSIFY = State(1) // classify
	STATE_DECODE   = State(2) // decode
	STATE_MATCH    = State(3) // match
	STATE_EMIT     = State(4) // emit
	STATE_DONE     = State(5) // done
	STATE_ERROR    = State(6) // error
)
