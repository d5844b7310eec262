// internal/pipeline/state.go
package pipeline

// State is a pipeline run's position in Idle → Retrieving → Filtering →
// Applying → Done|Aborted.
type State int

const (
	StateIdle State = iota
	StateRetrieving
	StateFiltering
	StateApplying
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRetrieving:
		return "Retrieving"
	case StateFiltering:
		return "Filtering"
	case StateApplying:
		return "Applying"
	case StateDone:
		return "Done"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}
