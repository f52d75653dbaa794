package cpm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv = Environment{Name: "internal-dev", APIKey: "key-123"}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		NewID:      func() string { return "fixed-id" },
	})
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		env  Environment
		want string
	}{
		{
			name: "templated host",
			env:  Environment{Name: "internal-dev"},
			want: "https://internal-dev.api.service.nhs.uk/connecting-party-manager",
		},
		{
			name: "environment is trimmed",
			env:  Environment{Name: "  ref "},
			want: "https://ref.api.service.nhs.uk/connecting-party-manager",
		},
		{
			name: "custom domain and path",
			opts: Options{Domain: "example.org/", Path: "/cpm/"},
			env:  Environment{Name: "int"},
			want: "https://int.example.org/cpm",
		},
		{
			name: "base url override ignores environment",
			opts: Options{BaseURL: "http://localhost:8080/"},
			env:  Environment{Name: "int"},
			want: "http://localhost:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.opts).BaseURL(tt.env))
		})
	}
}

func TestCreateProductTeam(t *testing.T) {
	var gotBody TeamInput
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ProductTeam", r.URL.Path)
		assert.Equal(t, "letmein", r.Header.Get("Authorization"))
		assert.Equal(t, "key-123", r.Header.Get("apikey"))
		assert.Equal(t, "1", r.Header.Get("version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "CPMFLOW:fixed-id", r.Header.Get("X-Correlation-ID"))
		assert.Equal(t, "fixed-id", r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"T1","name":"Team A","ods_code":"ABC","status":"active",
			"created_on":"2025-03-05T12:08:42+00:00","updated_on":null,"deleted_on":null,"keys":[]}`)
	})

	reply, err := client.CreateProductTeam(context.Background(), testEnv, TeamInput{ODSCode: "ABC", Name: "Team A"})
	require.NoError(t, err)

	assert.Equal(t, TeamInput{ODSCode: "ABC", Name: "Team A"}, gotBody)
	assert.Equal(t, http.StatusCreated, reply.Status)
	assert.Equal(t, "CPMFLOW:fixed-id", reply.CorrelationID)
	assert.NotEmpty(t, reply.Raw)

	want := ProductTeam{
		ID:        "T1",
		Name:      "Team A",
		ODSCode:   "ABC",
		Status:    "active",
		CreatedOn: "2025-03-05T12:08:42+00:00",
		Keys:      []any{},
	}
	if diff := cmp.Diff(want, reply.Value); diff != "" {
		t.Errorf("team mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateProduct_EscapesTeamID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ProductTeam/a%2Fb/Product", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"id":"P1","product_team_id":"a/b","name":"Team A","ods_code":"ABC"}`)
	})

	reply, err := client.CreateProduct(context.Background(), testEnv, "a/b", ProductInput{ODSCode: "ABC", Name: "Team A"})
	require.NoError(t, err)
	assert.Equal(t, "P1", reply.Value.ID)
	assert.Equal(t, "a/b", reply.Value.ProductTeamID)
}

func TestDeleteProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/ProductTeam/T1/Product/P1", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		_, _ = io.WriteString(w, `{"code":"RESOURCE_DELETED","message":"ok"}`)
	})

	reply, err := client.DeleteProduct(context.Background(), testEnv, "T1", "P1")
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{Code: "RESOURCE_DELETED", Message: "ok"}, reply.Value)
}

func TestDeleteProductTeam(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/ProductTeam/T1", r.URL.Path)
		_, _ = io.WriteString(w, `{"code":"RESOURCE_DELETED","message":"team gone"}`)
	})

	reply, err := client.DeleteProductTeam(context.Background(), testEnv, "T1")
	require.NoError(t, err)
	assert.Equal(t, "team gone", reply.Value.Message)
}

func TestReadProductTeam(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/ProductTeam/T1", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"T1","name":"Team A","ods_code":"ABC","updated_on":"2025-03-06T10:00:00+00:00"}`)
	})

	reply, err := client.ReadProductTeam(context.Background(), testEnv, "T1")
	require.NoError(t, err)
	require.NotNil(t, reply.Value.UpdatedOn)
	assert.Equal(t, "2025-03-06T10:00:00+00:00", *reply.Value.UpdatedOn)
	assert.Nil(t, reply.Value.DeletedOn)
}

func TestReadProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Product/P.AAA-AAA", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"P.AAA-AAA","cpm_product_team_id":"T1","name":"My Product"}`)
	})

	reply, err := client.ReadProduct(context.Background(), testEnv, "P.AAA-AAA")
	require.NoError(t, err)
	assert.Equal(t, "T1", reply.Value.CPMProductTeamID)
}

func TestSearchProducts_Query(t *testing.T) {
	tests := []struct {
		name      string
		query     SearchQuery
		wantQuery string
	}{
		{"both empty", SearchQuery{}, ""},
		{"organisation only", SearchQuery{OrganisationCode: "F5H1R"}, "organisation_code=F5H1R"},
		{"team only", SearchQuery{ProductTeamID: "T1"}, "product_team_id=T1"},
		{"both", SearchQuery{OrganisationCode: "F5H1R", ProductTeamID: "T1"}, "organisation_code=F5H1R&product_team_id=T1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestURI string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				requestURI = r.RequestURI
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				_, _ = io.WriteString(w, `{"results":[]}`)
			})

			_, err := client.SearchProducts(context.Background(), testEnv, tt.query)
			require.NoError(t, err)
			if tt.wantQuery == "" {
				assert.Equal(t, "/Product", requestURI, "no query string expected")
			}
		})
	}
}

func TestSearchProducts_Decode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[{"org_code":"F5H1R","product_teams":[
			{"product_team_id":"T1","products":[{"id":"P1","product_team_id":"T1","name":"One","deleted_on":null}]}]}]}`)
	})

	reply, err := client.SearchProducts(context.Background(), testEnv, SearchQuery{OrganisationCode: "F5H1R"})
	require.NoError(t, err)

	want := SearchResponse{Results: []SearchResult{{
		OrgCode: "F5H1R",
		ProductTeams: []SearchTeam{{
			ProductTeamID: "T1",
			Products:      []Product{{ID: "P1", ProductTeamID: "T1", Name: "One"}},
		}},
	}}}
	if diff := cmp.Diff(want, reply.Value); diff != "" {
		t.Errorf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "bad ods_code")
	})

	reply, err := client.CreateProductTeam(context.Background(), testEnv, TeamInput{ODSCode: "!", Name: "x"})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "status 400: bad ods_code", err.Error())
	assert.Equal(t, http.StatusBadRequest, reply.Status)
	assert.Equal(t, ProductTeam{}, reply.Value)
}

func TestHTTPError_Detail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain text", "  not found\n", "not found"},
		{"empty", "", "(empty body)"},
		{"envelope", `{"errors":[{"code":"VALIDATION_ERROR","message":"bad ods_code"}]}`, "bad ods_code"},
		{"envelope code only", `{"errors":[{"code":"MISSING_VALUE"}]}`, "MISSING_VALUE"},
		{"other json", `{"detail":"nope"}`, `{"detail":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &HTTPError{Status: 400, Body: tt.body}
			assert.Equal(t, tt.want, e.Detail())
		})
	}
}

func TestHTTPError_DetailTruncatesOnRuneBoundary(t *testing.T) {
	// é is two bytes; it straddles the cut.
	body := strings.Repeat("a", maxBodyInMessage-1) + "é" + "tail"
	got := (&HTTPError{Status: 500, Body: body}).Detail()

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxBodyInMessage-1)+"...", got)

	short := strings.Repeat("a", maxBodyInMessage)
	assert.Equal(t, short, (&HTTPError{Status: 500, Body: short}).Detail())

	long := strings.Repeat("a", maxBodyInMessage+10)
	assert.Equal(t, short+"...", (&HTTPError{Status: 500, Body: long}).Detail())
}

func TestDecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>oops</html>")
	})

	_, err := client.DeleteProductTeam(context.Background(), testEnv, "T1")
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, http.StatusOK, decodeErr.Status)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	srv.Close()

	_, err := client.ReadProductTeam(context.Background(), testEnv, "T1")
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.MethodGet, transportErr.Method)
}

func TestStubReadProduct(t *testing.T) {
	for _, id := range []string{"", "P.AAA-AAA", "anything"} {
		reply := StubReadProduct(id)
		assert.Equal(t, FixtureProductID, reply.Value.ID)
		assert.Equal(t, http.StatusOK, reply.Status)
		assert.Nil(t, reply.Value.UpdatedOn)
		assert.Contains(t, string(reply.Raw), `"updated_on":null`)
	}
}
