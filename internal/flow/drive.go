package flow

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Drive runs a controller's flow non-interactively. Values fill the fields,
// each step's action is triggered once, and Next is taken only while its gate
// holds. It stops at the first failed action and returns the state reached;
// the failure is reported through the state, not the error.
func Drive(ctx context.Context, c *Controller, values map[string]string) (State, error) {
	return DriveUntil(ctx, c, values, "")
}

// DriveUntil is Drive that also stops once the action bound to slot has
// succeeded. An empty slot runs the whole flow.
func DriveUntil(ctx context.Context, c *Controller, values map[string]string, slot string) (State, error) {
	for _, k := range slices.Sorted(maps.Keys(values)) {
		if _, err := c.SetField(k, values[k]); err != nil {
			return c.State(), err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return c.State(), err
		}
		st := c.State()
		step := st.Current()

		if a := step.Action; a != nil {
			if !st.ActionEnabled(a.Slot) {
				return st, fmt.Errorf("%w: %s (%s)", ErrActionDisabled, a.Label, missing(st, step))
			}
			st, err := c.Trigger(ctx, a.Slot)
			if err != nil {
				return st, err
			}
			if st.Outcome(a.Slot).Kind == Failure || a.Slot == slot {
				return st, nil
			}
		}

		st = c.State()
		if !st.HasNext() {
			return st, nil
		}
		if !st.CanAdvance() {
			return st, fmt.Errorf("%w: next from %q (%s)", ErrActionDisabled, step.Heading, missing(st, step))
		}
		if _, err := c.Next(); err != nil {
			return c.State(), err
		}
	}
}

// missing names the required fields of step that are blank.
func missing(st State, step Step) string {
	var blank []string
	for _, f := range step.Fields {
		if f.Required && !Filled(f.Key)(st) {
			blank = append(blank, f.Key)
		}
	}
	if len(blank) == 0 {
		return "gate not satisfied"
	}
	return fmt.Sprintf("missing %v", blank)
}
