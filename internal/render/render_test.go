package render

import (
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhsdigital/cpmflow/internal/cpm"
	"github.com/nhsdigital/cpmflow/internal/flow"
)

func ptr(s string) *string { return &s }

func TestOutcome_DeleteScenario(t *testing.T) {
	o := flow.Outcome{
		Kind:    flow.Success,
		Payload: flow.Payload{Value: cpm.DeleteResult{Code: "RESOURCE_DELETED", Message: "ok"}},
	}
	assert.Equal(t, []string{"Code: RESOURCE_DELETED", "Message: ok"}, Outcome(o, Options{}))
}

func TestOutcome_Kinds(t *testing.T) {
	assert.Nil(t, Outcome(flow.Outcome{}, Options{}))
	assert.Nil(t, Outcome(flow.Outcome{Kind: flow.Loading}, Options{}))
	assert.Equal(t, []string{"Failed"}, Outcome(flow.Outcome{Kind: flow.Failure, Message: "Failed"}, Options{}))
}

func TestTimestamp(t *testing.T) {
	utc := Options{Location: time.UTC}

	assert.Equal(t, "null", Timestamp(nil, utc))
	assert.Equal(t, "null", Timestamp(ptr(""), utc))
	assert.Equal(t, "05/03/2025, 12:08:42", Timestamp(ptr("2025-03-05T12:08:42.659073+00:00"), utc))
	assert.Equal(t, "not a date", Timestamp(ptr("not a date"), utc))
	assert.Equal(t, "2024-06-14 09:31", Timestamp(ptr("2024-06-14 09:31"), utc))

	london, err := time.LoadLocation("Europe/London")
	if err == nil {
		// BST applies in June.
		assert.Equal(t, "01/06/2025, 13:00:00", Timestamp(ptr("2025-06-01T12:00:00Z"), Options{Location: london}))
	}

	now := time.Date(2025, 3, 5, 14, 8, 42, 0, time.UTC)
	withAge := Options{Location: time.UTC, Now: func() time.Time { return now }}
	assert.Equal(t, "05/03/2025, 12:08:42 (2 hours ago)", Timestamp(ptr("2025-03-05T12:08:42Z"), withAge))
}

func TestTimestamp_WithoutOffset(t *testing.T) {
	utc := Options{Location: time.UTC}

	assert.Equal(t, "14/06/2024, 09:31:14", Timestamp(ptr("2024-06-14 09:31:14.740983"), utc))
	assert.Equal(t, "14/06/2024, 09:31:14", Timestamp(ptr("2024-06-14T09:31:14.740983"), utc))
	assert.Equal(t, "14/06/2024, 09:31:14", Timestamp(ptr("2024-06-14 09:31:14"), utc))

	// Offset-less values are wall-clock time in the display location.
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	assert.Equal(t, "14/06/2024, 09:31:14", Timestamp(ptr("2024-06-14 09:31:14.740983"), Options{Location: plus2}))

	now := time.Date(2024, 6, 14, 10, 31, 15, 0, time.UTC)
	withAge := Options{Location: time.UTC, Now: func() time.Time { return now }}
	assert.Equal(t, "14/06/2024, 09:31:14 (1 hour ago)", Timestamp(ptr("2024-06-14 09:31:14.740983"), withAge))
}

func TestPayload_ProductRead(t *testing.T) {
	lines := Payload(cpm.FixtureProductRead(), Options{Location: time.UTC})
	assert.Equal(t, []string{
		"Product ID: P.33A-KJ4",
		"Name: My Great Product",
		"ODS Code: F5H1R",
		"Status: active",
		"CPM Product Team Id: 0a5f4e25-ecdf-489d-80cf-5bd02ee14db0",
		"Created On: 05/03/2025, 12:08:42",
		"Updated On: null",
		"Deleted On: null",
		"Keys: []",
	}, lines)
}

func TestPayload_ProductTeam(t *testing.T) {
	lines := Payload(cpm.ProductTeam{
		ID:        "T1",
		Name:      "Team A",
		ODSCode:   "ABC",
		DeletedOn: ptr("2025-03-06T00:00:00Z"),
		Keys:      []any{map[string]any{"key_type": "product_team_id_alias", "key_value": "A"}},
	}, Options{Location: time.UTC})

	assert.Contains(t, lines, "Product Team ID: T1")
	assert.Contains(t, lines, "Name: Team A")
	assert.Contains(t, lines, "ODS Code: ABC")
	assert.Contains(t, lines, "Created On: null")
	assert.Contains(t, lines, "Deleted On: 06/03/2025, 00:00:00")
	assert.Contains(t, lines, `Keys: [{"key_type":"product_team_id_alias","key_value":"A"}]`)
}

func TestPayload_Search(t *testing.T) {
	lines := Payload(cpm.SearchResponse{Results: []cpm.SearchResult{{
		OrgCode: "F5H1R",
		ProductTeams: []cpm.SearchTeam{{
			ProductTeamID: "T1",
			Products: []cpm.Product{
				{ID: "P1", ProductTeamID: "T1", Name: "One"},
				{ID: "P2", ProductTeamID: "T1", Name: "Two"},
			},
		}},
	}}}, Options{})

	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "Search Results", lines[0])
	assert.Equal(t, "Organisation Code: F5H1R", lines[1])
	assert.Equal(t, "  Product Team ID: T1", lines[2])
	assert.Equal(t, "    Product ID: P1", lines[3])
	assert.Contains(t, lines, "    Product ID: P2")
	assert.Contains(t, lines, "    Product Team Id: T1")

	assert.Equal(t, []string{"Search Results", "No results"}, Payload(cpm.SearchResponse{}, Options{}))
}

func TestPayload_Unknown(t *testing.T) {
	assert.Nil(t, Payload(nil, Options{}))
	assert.Equal(t, []string{"{", `  "a": 1`, "}"}, Payload(map[string]int{"a": 1}, Options{}))
}

func TestIndentAndHighlight(t *testing.T) {
	raw := []byte(`{"code":"RESOURCE_DELETED","message":"ok"}`)
	want := "{\n  \"code\": \"RESOURCE_DELETED\",\n  \"message\": \"ok\"\n}"

	assert.Equal(t, want, Indent(raw))
	assert.Equal(t, "plain text", Indent([]byte("plain text")))

	highlighted := Highlight(raw, "#313244")
	assert.Equal(t, want, ansi.Strip(highlighted))
}

func TestSummary_Creation(t *testing.T) {
	defs := flow.Catalog(flow.Options{})
	def, ok := flow.Lookup(defs, flow.Creation)
	require.True(t, ok)

	team := cpm.ProductTeam{ID: "T1", Name: "Team A", ODSCode: "ABC", Status: "active"}
	st := flow.NewState(def, nil)
	var err error
	for _, e := range []flow.Event{
		flow.RequestStarted{Slot: flow.SlotTeam},
		flow.RequestSucceeded{Slot: flow.SlotTeam, Payload: flow.Payload{Value: team}},
		flow.RequestStarted{Slot: flow.SlotProduct},
		flow.RequestFailed{Slot: flow.SlotProduct, Message: "Failed to create Product. Please try again."},
	} {
		st, err = st.Apply(e)
		require.NoError(t, err)
	}

	lines := Summary(st, Options{Location: time.UTC})
	require.Equal(t, "Product Team created successfully", lines[0])
	require.Equal(t, "Product Team ID: T1", lines[1])
	require.Equal(t, "", lines[len(lines)-2])
	require.Equal(t, "Failed to create Product. Please try again.", lines[len(lines)-1])
}

func TestSummary_Idle(t *testing.T) {
	def, ok := flow.Lookup(flow.Catalog(flow.Options{}), flow.Search)
	require.True(t, ok)
	assert.Empty(t, Summary(flow.NewState(def, nil), Options{}))
}
