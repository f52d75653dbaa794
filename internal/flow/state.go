package flow

import (
	"fmt"
	"maps"

	"github.com/nhsdigital/cpmflow/internal/cpm"
)

// Field keys shared across flows.
const (
	FieldEnvironment      = "environment"
	FieldAPIKey           = "api_key"
	FieldTeamODSCode      = "team_ods_code"
	FieldTeamName         = "team_name"
	FieldProductName      = "product_name"
	FieldProductTeamID    = "product_team_id"
	FieldProductID        = "product_id"
	FieldOrganisationCode = "organisation_code"
)

// State is the whole state of one mounted flow. It is a value: Apply returns
// a new State and never mutates the receiver.
type State struct {
	def      *Definition
	step     int
	values   map[string]string
	outcomes map[string]Outcome
	captured map[string]string
	banner   string
}

// NewState starts a flow at step 0. Prefill values for undeclared fields are
// ignored.
func NewState(def *Definition, prefill map[string]string) State {
	values := make(map[string]string)
	for _, f := range def.Fields() {
		values[f.Key] = prefill[f.Key]
	}
	return State{
		def:      def,
		values:   values,
		outcomes: map[string]Outcome{},
		captured: map[string]string{},
	}
}

func (s State) Definition() *Definition { return s.def }

// Step returns the current step index.
func (s State) Step() int { return s.step }

// Current returns the current step.
func (s State) Current() Step { return s.def.Steps[s.step] }

// Value returns the raw value of a field.
func (s State) Value(key string) string { return s.values[key] }

// Outcome returns the latest outcome of a slot, Idle if none.
func (s State) Outcome(slot string) Outcome { return s.outcomes[slot] }

// Captured returns an identifier captured from an earlier response.
func (s State) Captured(key string) string { return s.captured[key] }

// Banner returns the latest error message, empty when there is none.
func (s State) Banner() string { return s.banner }

// Input builds what an action sees from the current values.
func (s State) Input() Input {
	return Input{
		Env: cpm.Environment{
			Name:   s.values[FieldEnvironment],
			APIKey: s.values[FieldAPIKey],
		},
		Values:   maps.Clone(s.values),
		Captured: maps.Clone(s.captured),
	}
}

// HasNext reports whether the current step offers a Next control.
func (s State) HasNext() bool {
	return s.step < len(s.def.Steps)-1 && s.Current().CanAdvance != nil
}

// CanAdvance reports whether the Next control is enabled.
func (s State) CanAdvance() bool {
	return s.HasNext() && s.Current().CanAdvance(s)
}

// ActionEnabled reports whether the action for slot may be triggered.
func (s State) ActionEnabled(slot string) bool {
	a, _, ok := s.def.Action(slot)
	if !ok {
		return false
	}
	o := s.outcomes[slot]
	if o.Kind == Loading {
		return false
	}
	if a.Once && o.Kind == Success {
		return false
	}
	return a.Enabled == nil || a.Enabled(s)
}

// Frozen reports whether the fields of step i are read-only.
func (s State) Frozen(i int) bool {
	if i < 0 || i >= len(s.def.Steps) {
		return false
	}
	slot := s.def.Steps[i].FreezeOn
	return slot != "" && s.outcomes[slot].Kind == Success
}

// Echo returns the values shown for step i's fields. Frozen steps echo the
// response when the step maps it, otherwise the submitted values.
func (s State) Echo(i int) map[string]string {
	step := s.def.Steps[i]
	out := make(map[string]string, len(step.Fields))
	for _, f := range step.Fields {
		out[f.Key] = s.values[f.Key]
	}
	if s.Frozen(i) && step.Echo != nil {
		maps.Copy(out, step.Echo(s.outcomes[step.FreezeOn].Payload))
	}
	return out
}

// Event is a state transition.
type Event interface{ event() }

// FieldChanged replaces a field value.
type FieldChanged struct{ Key, Value string }

// Advanced moves to step To.
type Advanced struct{ To int }

// RequestStarted marks a slot Loading and clears the banner.
type RequestStarted struct{ Slot string }

// RequestSucceeded completes a slot with a payload.
type RequestSucceeded struct {
	Slot     string
	Payload  Payload
	Captured map[string]string
}

// RequestFailed completes a slot with a message and sets the banner.
type RequestFailed struct{ Slot, Message string }

func (FieldChanged) event()     {}
func (Advanced) event()         {}
func (RequestStarted) event()   {}
func (RequestSucceeded) event() {}
func (RequestFailed) event()    {}

// Apply returns the state after e.
func (s State) Apply(e Event) (State, error) {
	switch e := e.(type) {
	case FieldChanged:
		_, step, ok := s.def.Field(e.Key)
		if !ok {
			return s, fmt.Errorf("%w: %s", ErrUnknownField, e.Key)
		}
		if s.Frozen(step) {
			return s, fmt.Errorf("%w: %s", ErrFieldFrozen, e.Key)
		}
		next := s
		next.values = maps.Clone(s.values)
		next.values[e.Key] = e.Value
		return next, nil

	case Advanced:
		if e.To < 0 || e.To >= len(s.def.Steps) {
			return s, fmt.Errorf("%w: %d", ErrStepOutOfRange, e.To)
		}
		if e.To < s.step {
			return s, fmt.Errorf("%w: %d -> %d", ErrStepBackward, s.step, e.To)
		}
		next := s
		next.step = e.To
		return next, nil

	case RequestStarted:
		if _, _, ok := s.def.Action(e.Slot); !ok {
			return s, fmt.Errorf("%w: %s", ErrUnknownAction, e.Slot)
		}
		if s.outcomes[e.Slot].Kind == Loading {
			return s, fmt.Errorf("%w: %s", ErrRequestInFlight, e.Slot)
		}
		next := s.withOutcome(e.Slot, Outcome{Kind: Loading})
		next.banner = ""
		return next, nil

	case RequestSucceeded:
		if err := s.expectLoading(e.Slot); err != nil {
			return s, err
		}
		next := s.withOutcome(e.Slot, Outcome{Kind: Success, Payload: e.Payload})
		if len(e.Captured) > 0 {
			next.captured = maps.Clone(s.captured)
			maps.Copy(next.captured, e.Captured)
		}
		return next, nil

	case RequestFailed:
		if err := s.expectLoading(e.Slot); err != nil {
			return s, err
		}
		next := s.withOutcome(e.Slot, Outcome{Kind: Failure, Message: e.Message})
		next.banner = e.Message
		return next, nil

	default:
		return s, fmt.Errorf("unhandled event %T", e)
	}
}

func (s State) expectLoading(slot string) error {
	if _, _, ok := s.def.Action(slot); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, slot)
	}
	if s.outcomes[slot].Kind != Loading {
		return fmt.Errorf("%w: %s", ErrNotInFlight, slot)
	}
	return nil
}

func (s State) withOutcome(slot string, o Outcome) State {
	next := s
	next.outcomes = maps.Clone(s.outcomes)
	next.outcomes[slot] = o
	return next
}
