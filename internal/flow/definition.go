// Package flow implements the wizard engine shared by every CPM flow: a
// declarative description of steps, fields and request actions, an immutable
// state with a reducer, and a controller that owns one mounted flow.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nhsdigital/cpmflow/internal/cpm"
)

// ID names a flow.
type ID string

const (
	Creation      ID = "creation"
	Search        ID = "search"
	DeleteProduct ID = "deleteProduct"
	DeleteTeam    ID = "deleteTeam"
	ReadProduct   ID = "readProduct"
	ReadTeam      ID = "readTeam"
)

// Field is one string input of a step.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Secret      bool
	Required    bool
}

// Gate is a predicate over flow state that enables a control.
type Gate func(State) bool

// Filled holds when every key has a non-blank value.
func Filled(keys ...string) Gate {
	return func(s State) bool {
		for _, k := range keys {
			if strings.TrimSpace(s.Value(k)) == "" {
				return false
			}
		}
		return true
	}
}

// Succeeded holds once the slot's latest outcome is a success.
func Succeeded(slot string) Gate {
	return func(s State) bool {
		return s.Outcome(slot).Kind == Success
	}
}

// Input is what a request action sees when it runs.
type Input struct {
	Env      cpm.Environment
	Values   map[string]string
	Captured map[string]string
}

// Value returns a field value with surrounding whitespace removed.
func (in Input) Value(key string) string {
	return strings.TrimSpace(in.Values[key])
}

// API is the subset of the CPM client the flows call.
type API interface {
	CreateProductTeam(ctx context.Context, env cpm.Environment, in cpm.TeamInput) (cpm.Reply[cpm.ProductTeam], error)
	CreateProduct(ctx context.Context, env cpm.Environment, teamID string, in cpm.ProductInput) (cpm.Reply[cpm.Product], error)
	DeleteProduct(ctx context.Context, env cpm.Environment, teamID, productID string) (cpm.Reply[cpm.DeleteResult], error)
	DeleteProductTeam(ctx context.Context, env cpm.Environment, teamID string) (cpm.Reply[cpm.DeleteResult], error)
	ReadProductTeam(ctx context.Context, env cpm.Environment, teamID string) (cpm.Reply[cpm.ProductTeam], error)
	ReadProduct(ctx context.Context, env cpm.Environment, productID string) (cpm.Reply[cpm.ProductRead], error)
	SearchProducts(ctx context.Context, env cpm.Environment, q cpm.SearchQuery) (cpm.Reply[cpm.SearchResponse], error)
}

// Runner performs the single outbound call of an action.
type Runner func(ctx context.Context, api API, in Input) (Payload, error)

// FailurePolicy turns a request error into the banner text.
type FailurePolicy struct {
	Message string
	// Detailed appends the status and body of HTTP failures.
	Detailed bool
}

// Describe returns the user-facing message for err. Transport and decode
// failures always get the plain message.
func (p FailurePolicy) Describe(err error) string {
	var httpErr *cpm.HTTPError
	if p.Detailed && errors.As(err, &httpErr) {
		return fmt.Sprintf("%s (%s)", p.Message, httpErr.Error())
	}
	return p.Message
}

// Action is a request-issuing control bound to a slot.
type Action struct {
	Slot      string
	Label     string
	BusyLabel string
	Enabled   Gate
	// Once disables the action after its first success.
	Once    bool
	Run     Runner
	Failure FailurePolicy
	// Capture extracts identifiers later steps depend on.
	Capture func(Payload) map[string]string
}

// Step is one page of a flow.
type Step struct {
	Title   string
	Heading string
	Fields  []Field
	Action  *Action
	// CanAdvance gates the Next control. Nil means the step has no Next.
	CanAdvance Gate
	// FreezeOn names the slot whose success turns Fields read-only.
	FreezeOn string
	// Echo maps a success payload to the values shown once frozen.
	Echo          func(Payload) map[string]string
	SuccessBanner string
}

// Definition declares a whole flow.
type Definition struct {
	ID          ID
	Tool        string
	Title       string
	Description string
	Steps       []Step
}

// Field looks up a field by key and reports the step that declares it.
func (d *Definition) Field(key string) (Field, int, bool) {
	for i, step := range d.Steps {
		for _, f := range step.Fields {
			if f.Key == key {
				return f, i, true
			}
		}
	}
	return Field{}, 0, false
}

// Action looks up an action by slot and reports the step that declares it.
func (d *Definition) Action(slot string) (*Action, int, bool) {
	for i, step := range d.Steps {
		if step.Action != nil && step.Action.Slot == slot {
			return step.Action, i, true
		}
	}
	return nil, 0, false
}

// Fields returns every field of the flow in step order.
func (d *Definition) Fields() []Field {
	var out []Field
	for _, step := range d.Steps {
		out = append(out, step.Fields...)
	}
	return out
}

// Actions returns every action of the flow in step order.
func (d *Definition) Actions() []*Action {
	var out []*Action
	for _, step := range d.Steps {
		if step.Action != nil {
			out = append(out, step.Action)
		}
	}
	return out
}
