package app

// State represents the current application state.
type State int

const (
	StateLoading    State = iota // Loading the session list
	StateIdle                    // Ready for user input
	StateProcessing              // A submission is in flight
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}
