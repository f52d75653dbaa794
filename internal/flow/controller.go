package flow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nhsdigital/cpmflow/internal/logger"
)

var mountSeq atomic.Uint64

// Controller owns the state of one mounted flow. Requests run outside the
// lock: Begin marks the slot Loading, Request.Do performs the call, and
// Finish applies the result.
type Controller struct {
	mu      sync.Mutex
	api     API
	state   State
	mountID uint64
	closed  bool
}

// NewController mounts def with fresh state.
func NewController(def *Definition, api API, prefill map[string]string) *Controller {
	return &Controller{
		api:     api,
		state:   NewState(def, prefill),
		mountID: mountSeq.Add(1),
	}
}

// MountID distinguishes this mount from any earlier mount of the same flow.
func (c *Controller) MountID() uint64 { return c.mountID }

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetField changes one field value.
func (c *Controller) SetField(key, value string) (State, error) {
	return c.apply(FieldChanged{Key: key, Value: value})
}

// Advance moves to step to. The gate is not consulted; surfaces disable the
// Next control instead.
func (c *Controller) Advance(to int) (State, error) {
	return c.apply(Advanced{To: to})
}

// Next advances one step.
func (c *Controller) Next() (State, error) {
	c.mu.Lock()
	to := c.state.step + 1
	c.mu.Unlock()
	return c.Advance(to)
}

func (c *Controller) apply(e Event) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state, ErrUnmounted
	}
	next, err := c.state.Apply(e)
	if err != nil {
		return c.state, err
	}
	c.state = next
	return c.state, nil
}

// Request is a started call for one slot.
type Request struct {
	Slot    string
	MountID uint64
	action  *Action
	api     API
	input   Input
}

// Completion carries the result of a Request back to its controller.
type Completion struct {
	MountID uint64
	Slot    string
	Payload Payload
	Err     error
}

// Do performs the call. It does not touch controller state and may run on
// any goroutine.
func (r *Request) Do(ctx context.Context) Completion {
	payload, err := r.action.Run(ctx, r.api, r.input)
	return Completion{MountID: r.MountID, Slot: r.Slot, Payload: payload, Err: err}
}

// Begin marks slot Loading and returns the request to run. A second Begin
// for the same slot fails with ErrRequestInFlight until Finish.
func (c *Controller) Begin(slot string) (*Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrUnmounted
	}
	action, _, ok := c.state.def.Action(slot)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, slot)
	}

	// The reducer rejects a slot that is already Loading.
	next, err := c.state.Apply(RequestStarted{Slot: slot})
	if err != nil {
		return nil, err
	}
	c.state = next

	logger.Debug("flow %s: %s started", c.state.def.ID, slot)
	return &Request{
		Slot:    slot,
		MountID: c.mountID,
		action:  action,
		api:     c.api,
		input:   c.state.Input(),
	}, nil
}

// Finish applies a completion. Completions for a closed controller or
// another mount are dropped with ErrUnmounted.
func (c *Controller) Finish(done Completion) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || done.MountID != c.mountID {
		logger.Debug("flow %s: dropping %s completion for stale mount %d", c.state.def.ID, done.Slot, done.MountID)
		return c.state, ErrUnmounted
	}
	action, _, ok := c.state.def.Action(done.Slot)
	if !ok {
		return c.state, fmt.Errorf("%w: %s", ErrUnknownAction, done.Slot)
	}

	var e Event
	if done.Err != nil {
		logger.Warn("flow %s: %s failed: %v", c.state.def.ID, done.Slot, done.Err)
		e = RequestFailed{Slot: done.Slot, Message: action.Failure.Describe(done.Err)}
	} else {
		var captured map[string]string
		if action.Capture != nil {
			captured = action.Capture(done.Payload)
		}
		logger.Info("flow %s: %s succeeded with status %d", c.state.def.ID, done.Slot, done.Payload.Status)
		e = RequestSucceeded{Slot: done.Slot, Payload: done.Payload, Captured: captured}
	}

	next, err := c.state.Apply(e)
	if err != nil {
		return c.state, err
	}
	c.state = next
	return c.state, nil
}

// Trigger runs slot's action to completion on the calling goroutine.
func (c *Controller) Trigger(ctx context.Context, slot string) (State, error) {
	req, err := c.Begin(slot)
	if err != nil {
		return c.State(), err
	}
	return c.Finish(req.Do(ctx))
}

// Close unmounts the flow. Later completions are inert.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
