package flow

// OutcomeKind tags the state of one request slot.
type OutcomeKind int

const (
	Idle OutcomeKind = iota
	Loading
	Success
	Failure
)

func (k OutcomeKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Payload is a decoded response. Value holds the cpm type for the action.
type Payload struct {
	Value         any
	Raw           []byte
	Status        int
	CorrelationID string
}

// Outcome is the latest result of a slot. Payload is set only on Success and
// Message only on Failure.
type Outcome struct {
	Kind    OutcomeKind
	Payload Payload
	Message string
}
