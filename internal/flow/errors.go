package flow

import "errors"

var (
	// ErrStepOutOfRange is returned when advancing past either end of a flow.
	ErrStepOutOfRange = errors.New("step out of range")
	// ErrStepBackward is returned when advancing to an earlier step.
	ErrStepBackward = errors.New("flows cannot move backward")
	// ErrRequestInFlight is returned when a slot already has a pending request.
	ErrRequestInFlight = errors.New("request already in flight")
	// ErrNotInFlight is returned when a completion arrives for an idle slot.
	ErrNotInFlight = errors.New("no request in flight")
	// ErrUnknownField is returned for a field key the flow does not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldFrozen is returned when editing a field after its step succeeded.
	ErrFieldFrozen = errors.New("field is frozen")
	// ErrUnknownAction is returned for a slot the flow does not declare.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnmounted is returned once the controller has been closed.
	ErrUnmounted = errors.New("flow unmounted")
	// ErrActionDisabled is returned by Drive when a gate does not hold.
	ErrActionDisabled = errors.New("action disabled")
)
