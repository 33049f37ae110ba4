// Package workflow tracks the load lifecycle of a data set shown on the portal.
package workflow

// State represents where a data set is in its load lifecycle
type State string

const (
	StateIdle    State = "IDLE"
	StateLoading State = "LOADING"
	StateLoaded  State = "LOADED"
	StateFailed  State = "FAILED"
)

var validStates = map[State]bool{
	StateIdle:    true,
	StateLoading: true,
	StateLoaded:  true,
	StateFailed:  true,
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known load state
func (s State) IsValid() bool {
	return validStates[s]
}
