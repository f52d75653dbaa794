package testfixtures

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhsdigital/cpmflow/internal/cpm"
	"github.com/nhsdigital/cpmflow/internal/flow"
)

var _ flow.API = (*MockAPI)(nil)

// --- MockAPI Tests ---

func TestMockAPI_DefaultReplies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := NewMockAPI()
	env := cpm.Environment{Name: FixedEnvironment, APIKey: FixedAPIKey}

	team, err := api.CreateProductTeam(ctx, env, cpm.TeamInput{ODSCode: "ABC", Name: "Team A"})
	require.NoError(t, err)
	require.Equal(t, FixedTeamID, team.Value.ID)
	require.JSONEq(t, string(team.Raw), string(ReplyOf(TeamT1(), 201).Raw))

	read, err := api.ReadProduct(ctx, env, "anything")
	require.NoError(t, err)
	require.Equal(t, cpm.FixtureProductID, read.Value.ID)

	search, err := api.SearchProducts(ctx, env, cpm.SearchQuery{OrganisationCode: "ABC"})
	require.NoError(t, err)
	require.Len(t, search.Value.Results, 1)
}

func TestMockAPI_RecordsCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := NewMockAPI()
	env := cpm.Environment{Name: FixedEnvironment, APIKey: FixedAPIKey}

	_, _ = api.CreateProduct(ctx, env, "T1", cpm.ProductInput{Name: "Widget"})
	_, _ = api.DeleteProduct(ctx, env, "T1", "P1")
	_, _ = api.DeleteProduct(ctx, env, "T2", "P2")

	require.Len(t, api.Calls(), 3)
	require.Equal(t, 2, api.CallCount("DeleteProduct"))
	require.Equal(t, 0, api.CallCount("ReadProductTeam"))

	last, ok := api.LastCall("DeleteProduct")
	require.True(t, ok)
	require.Equal(t, []string{"T2", "P2"}, last.Args)
	require.Equal(t, env, last.Env)

	create, ok := api.LastCall("CreateProduct")
	require.True(t, ok)
	require.Equal(t, cpm.ProductInput{Name: "Widget"}, create.Body)

	_, ok = api.LastCall("SearchProducts")
	require.False(t, ok)
}

func TestMockAPI_Errors(t *testing.T) {
	t.Parallel()

	api := NewMockAPI()
	api.TeamErr = BadRequest("bad ods_code")

	_, err := api.CreateProductTeam(context.Background(), cpm.Environment{}, cpm.TeamInput{})
	var httpErr *cpm.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, 400, httpErr.Status)
	require.Equal(t, "bad ods_code", httpErr.Detail())
}

func TestMockAPI_HoldRelease(t *testing.T) {
	t.Parallel()

	api := NewMockAPI()
	api.Hold()

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = api.DeleteProductTeam(context.Background(), cpm.Environment{}, "T1")
		close(done)
	}()

	require.Eventually(t, func() bool { return api.CallCount("DeleteProductTeam") == 1 }, time.Second, 5*time.Millisecond)
	select {
	case <-done:
		t.Fatal("call returned while held")
	default:
	}

	api.Release()
	wg.Wait()
}

func TestMockAPI_HoldHonoursContext(t *testing.T) {
	t.Parallel()

	api := NewMockAPI()
	api.Hold()
	defer api.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.ReadProductTeam(ctx, cpm.Environment{}, "T1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestKey(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"enter", "tab", "shift+tab", "esc", "ctrl+r", "ctrl+e", "a"} {
		require.Equal(t, s, Key(s).String())
	}
	require.Len(t, Type("abc"), 3)
}
