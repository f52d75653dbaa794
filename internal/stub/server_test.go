package stub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhsdigital/cpmflow/internal/cpm"
)

var fixedNow = time.Date(2025, 3, 5, 12, 8, 42, 659073000, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
	}
}

func setup(t *testing.T) (*cpm.Client, cpm.Environment) {
	t.Helper()
	s := New(Options{Now: func() time.Time { return fixedNow }, NewID: sequentialIDs()})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	client := cpm.New(cpm.Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	return client, cpm.Environment{Name: "local", APIKey: "key"}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httpErr *cpm.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected HTTPError, got %v", err)
	return httpErr.Status
}

func TestStub_TeamLifecycle(t *testing.T) {
	ctx := context.Background()
	client, env := setup(t)

	created, err := client.CreateProductTeam(ctx, env, cpm.TeamInput{ODSCode: "ABC", Name: "Team A"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, created.Status)
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", created.Value.ID)
	assert.Equal(t, "active", created.Value.Status)
	assert.Equal(t, "2025-03-05T12:08:42.659073+00:00", created.Value.CreatedOn)
	assert.Nil(t, created.Value.UpdatedOn)
	assert.Empty(t, created.Value.Keys)

	read, err := client.ReadProductTeam(ctx, env, created.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Value, read.Value)

	deleted, err := client.DeleteProductTeam(ctx, env, created.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, CodeDeleted, deleted.Value.Code)

	_, err = client.ReadProductTeam(ctx, env, created.Value.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestStub_TeamValidation(t *testing.T) {
	ctx := context.Background()
	client, env := setup(t)

	tests := []struct {
		name    string
		in      cpm.TeamInput
		message string
	}{
		{"empty ods", cpm.TeamInput{Name: "Team A"}, "bad ods_code"},
		{"invalid ods", cpm.TeamInput{ODSCode: "x", Name: "Team A"}, "bad ods_code"},
		{"missing name", cpm.TeamInput{ODSCode: "ABC"}, "missing name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateProductTeam(ctx, env, tt.in)
			var httpErr *cpm.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			assert.Equal(t, tt.message, httpErr.Detail())
		})
	}
}

func TestStub_ProductLifecycle(t *testing.T) {
	ctx := context.Background()
	client, env := setup(t)

	team, err := client.CreateProductTeam(ctx, env, cpm.TeamInput{ODSCode: "ABC", Name: "Team A"})
	require.NoError(t, err)

	product, err := client.CreateProduct(ctx, env, team.Value.ID, cpm.ProductInput{ODSCode: "ABC", Name: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, "P.000-002", product.Value.ID)
	assert.Equal(t, team.Value.ID, product.Value.ProductTeamID)
	assert.Equal(t, "ABC", product.Value.ODSCode)

	read, err := client.ReadProduct(ctx, env, product.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, team.Value.ID, read.Value.CPMProductTeamID)
	assert.Contains(t, string(read.Raw), `"cpm_product_team_id"`)

	deleted, err := client.DeleteProduct(ctx, env, team.Value.ID, product.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, cpm.DeleteResult{Code: CodeDeleted, Message: "P.000-002 has been deleted."}, deleted.Value)

	_, err = client.DeleteProduct(ctx, env, team.Value.ID, product.Value.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestStub_ProductUnknownTeam(t *testing.T) {
	client, env := setup(t)

	_, err := client.CreateProduct(context.Background(), env, "missing", cpm.ProductInput{Name: "Widget"})
	var httpErr *cpm.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Could not find ProductTeam for key ('missing')", httpErr.Detail())
}

func TestStub_Search(t *testing.T) {
	ctx := context.Background()
	client, env := setup(t)

	a, err := client.CreateProductTeam(ctx, env, cpm.TeamInput{ODSCode: "ABC", Name: "Team A"})
	require.NoError(t, err)
	b, err := client.CreateProductTeam(ctx, env, cpm.TeamInput{ODSCode: "XYZ", Name: "Team B"})
	require.NoError(t, err)
	for _, team := range []string{a.Value.ID, a.Value.ID, b.Value.ID} {
		_, err := client.CreateProduct(ctx, env, team, cpm.ProductInput{Name: "Widget"})
		require.NoError(t, err)
	}

	all, err := client.SearchProducts(ctx, env, cpm.SearchQuery{})
	require.NoError(t, err)
	require.Len(t, all.Value.Results, 2)
	assert.Equal(t, "ABC", all.Value.Results[0].OrgCode)
	require.Len(t, all.Value.Results[0].ProductTeams, 1)
	assert.Len(t, all.Value.Results[0].ProductTeams[0].Products, 2)

	byOrg, err := client.SearchProducts(ctx, env, cpm.SearchQuery{OrganisationCode: "xyz"})
	require.NoError(t, err)
	require.Len(t, byOrg.Value.Results, 1)
	assert.Equal(t, b.Value.ID, byOrg.Value.Results[0].ProductTeams[0].ProductTeamID)

	none, err := client.SearchProducts(ctx, env, cpm.SearchQuery{ProductTeamID: "missing"})
	require.NoError(t, err)
	assert.Empty(t, none.Value.Results)
	assert.JSONEq(t, `{"results":[]}`, string(none.Raw))
}

func TestStub_RequiresAPIKey(t *testing.T) {
	client, _ := setup(t)

	_, err := client.ReadProductTeam(context.Background(), cpm.Environment{Name: "local"}, "T1")
	var httpErr *cpm.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Equal(t, "missing apikey header", httpErr.Detail())
}

func TestStub_EchoesCorrelationID(t *testing.T) {
	s := New(Options{})
	req := httptest.NewRequest(http.MethodGet, "/Product", nil)
	req.Header.Set("apikey", "key")
	req.Header.Set("X-Correlation-ID", "CPMFLOW:abc")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CPMFLOW:abc", rec.Header().Get("X-Correlation-ID"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
