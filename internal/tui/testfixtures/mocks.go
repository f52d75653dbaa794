// Package testfixtures provides mock implementations and test utilities for TUI testing.
//
// MockAPI stands in for the CPM client behind flow.API. It records every call,
// answers from canned replies and can hold calls open to exercise loading states.
//
// Example usage:
//
//	func TestMyComponent(t *testing.T) {
//	    api := testfixtures.NewMockAPI()
//	    api.TeamErr = testfixtures.BadRequest("bad ods_code")
//
//	    // Use api in a controller...
//	    require.Equal(t, 1, api.CallCount("CreateProductTeam"))
//	}
package testfixtures

import (
	"context"
	"net/http"
	"sync"

	"github.com/nhsdigital/cpmflow/internal/cpm"
)

// Call records one invocation of MockAPI.
type Call struct {
	Method string
	Env    cpm.Environment
	Args   []string
	Body   any
}

// MockAPI is a thread-safe fake of the CPM API.
// Set the reply and error fields before handing it to a controller.
type MockAPI struct {
	mu sync.Mutex

	Team       cpm.Reply[cpm.ProductTeam]
	TeamErr    error
	Product    cpm.Reply[cpm.Product]
	ProductErr error
	Deleted    cpm.Reply[cpm.DeleteResult]
	DeleteErr  error
	ReadTeam   cpm.Reply[cpm.ProductTeam]
	ReadErr    error
	Read       cpm.Reply[cpm.ProductRead]
	Search     cpm.Reply[cpm.SearchResponse]
	SearchErr  error

	calls []Call
	gate  chan struct{}
}

// NewMockAPI returns a mock that answers every call successfully.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		Team:     ReplyOf(TeamT1(), http.StatusCreated),
		Product:  ReplyOf(ProductP1(), http.StatusCreated),
		Deleted:  ReplyOf(Deleted(), http.StatusOK),
		ReadTeam: ReplyOf(TeamT1(), http.StatusOK),
		Read:     cpm.StubReadProduct(cpm.FixtureProductID),
		Search:   ReplyOf(SearchWithResults(), http.StatusOK),
	}
}

// Hold makes subsequent calls block until Release or their context ends.
func (m *MockAPI) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
}

// Release unblocks held calls.
func (m *MockAPI) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// Calls returns a copy of the recorded calls.
func (m *MockAPI) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns how many times method was called.
func (m *MockAPI) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// LastCall returns the most recent call of method.
func (m *MockAPI) LastCall(method string) (Call, bool) {
	calls := m.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method {
			return calls[i], true
		}
	}
	return Call{}, false
}

func (m *MockAPI) record(ctx context.Context, c Call) error {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	gate := m.gate
	m.mu.Unlock()

	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockAPI) CreateProductTeam(ctx context.Context, env cpm.Environment, in cpm.TeamInput) (cpm.Reply[cpm.ProductTeam], error) {
	if err := m.record(ctx, Call{Method: "CreateProductTeam", Env: env, Body: in}); err != nil {
		return cpm.Reply[cpm.ProductTeam]{}, err
	}
	return m.Team, m.TeamErr
}

func (m *MockAPI) CreateProduct(ctx context.Context, env cpm.Environment, teamID string, in cpm.ProductInput) (cpm.Reply[cpm.Product], error) {
	if err := m.record(ctx, Call{Method: "CreateProduct", Env: env, Args: []string{teamID}, Body: in}); err != nil {
		return cpm.Reply[cpm.Product]{}, err
	}
	return m.Product, m.ProductErr
}

func (m *MockAPI) DeleteProduct(ctx context.Context, env cpm.Environment, teamID, productID string) (cpm.Reply[cpm.DeleteResult], error) {
	if err := m.record(ctx, Call{Method: "DeleteProduct", Env: env, Args: []string{teamID, productID}}); err != nil {
		return cpm.Reply[cpm.DeleteResult]{}, err
	}
	return m.Deleted, m.DeleteErr
}

func (m *MockAPI) DeleteProductTeam(ctx context.Context, env cpm.Environment, teamID string) (cpm.Reply[cpm.DeleteResult], error) {
	if err := m.record(ctx, Call{Method: "DeleteProductTeam", Env: env, Args: []string{teamID}}); err != nil {
		return cpm.Reply[cpm.DeleteResult]{}, err
	}
	return m.Deleted, m.DeleteErr
}

func (m *MockAPI) ReadProductTeam(ctx context.Context, env cpm.Environment, teamID string) (cpm.Reply[cpm.ProductTeam], error) {
	if err := m.record(ctx, Call{Method: "ReadProductTeam", Env: env, Args: []string{teamID}}); err != nil {
		return cpm.Reply[cpm.ProductTeam]{}, err
	}
	return m.ReadTeam, m.ReadErr
}

func (m *MockAPI) ReadProduct(ctx context.Context, env cpm.Environment, productID string) (cpm.Reply[cpm.ProductRead], error) {
	if err := m.record(ctx, Call{Method: "ReadProduct", Env: env, Args: []string{productID}}); err != nil {
		return cpm.Reply[cpm.ProductRead]{}, err
	}
	return m.Read, m.ReadErr
}

func (m *MockAPI) SearchProducts(ctx context.Context, env cpm.Environment, q cpm.SearchQuery) (cpm.Reply[cpm.SearchResponse], error) {
	if err := m.record(ctx, Call{Method: "SearchProducts", Env: env, Body: q}); err != nil {
		return cpm.Reply[cpm.SearchResponse]{}, err
	}
	return m.Search, m.SearchErr
}
