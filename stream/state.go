package stream

// State is the phase of one submission.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Active reports whether a request is in flight.
func (s State) Active() bool {
	return s == StateSending || s == StateStreaming
}

// FailureKind separates the ways a submission can fail.
type FailureKind string

const (
	// FailureTransport covers request errors, non-2xx replies, read errors
	// and a body that ends before a terminal frame.
	FailureTransport FailureKind = "transport"
	// FailureServer is an explicit error frame.
	FailureServer FailureKind = "server"
)
