package testfixtures

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nhsdigital/cpmflow/internal/cpm"
)

// Fixed test values for consistent rendering
const (
	FixedEnvironment = "internal-dev"
	FixedAPIKey      = "test-api-key"
	FixedTeamID      = "T1"
	FixedProductID   = "P.AAA-111"
	FixedCreatedOn   = "2024-01-15T10:30:00+00:00"
)

var (
	FixedTime = time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)
)

// ReplyOf wraps v as a reply with its JSON encoding as the raw body.
func ReplyOf[T any](v T, status int) cpm.Reply[T] {
	raw, _ := json.Marshal(v)
	return cpm.Reply[T]{Value: v, Status: status, Raw: raw, CorrelationID: "CPMFLOW:fixture"}
}

// EnvValues returns filled environment step values.
func EnvValues() map[string]string {
	return map[string]string{
		"environment": FixedEnvironment,
		"api_key":     FixedAPIKey,
	}
}

// TeamT1 returns the product team "Team A" for ODS code ABC.
func TeamT1() cpm.ProductTeam {
	return cpm.ProductTeam{
		ID:        FixedTeamID,
		Name:      "Team A",
		ODSCode:   "ABC",
		Status:    "active",
		CreatedOn: FixedCreatedOn,
		Keys:      []any{},
	}
}

// ProductP1 returns a product owned by TeamT1.
func ProductP1() cpm.Product {
	return cpm.Product{
		ID:            FixedProductID,
		ProductTeamID: FixedTeamID,
		Name:          "Widget",
		ODSCode:       "ABC",
		Status:        "active",
		CreatedOn:     FixedCreatedOn,
		Keys:          []any{},
	}
}

// Deleted returns the body of a successful delete.
func Deleted() cpm.DeleteResult {
	return cpm.DeleteResult{Code: "RESOURCE_DELETED", Message: "P.AAA-111 has been deleted."}
}

// SearchWithResults returns one organisation with TeamT1 and ProductP1.
func SearchWithResults() cpm.SearchResponse {
	return cpm.SearchResponse{
		Results: []cpm.SearchResult{{
			OrgCode: "ABC",
			ProductTeams: []cpm.SearchTeam{{
				ProductTeamID: FixedTeamID,
				Products:      []cpm.Product{ProductP1()},
			}},
		}},
	}
}

// BadRequest returns the error for a 400 with the given validation message.
func BadRequest(message string) error {
	body, _ := json.Marshal(map[string]any{
		"errors": []map[string]string{{"code": "VALIDATION_ERROR", "message": message}},
	})
	return &cpm.HTTPError{Method: http.MethodPost, URL: "https://stub/ProductTeam", Status: http.StatusBadRequest, Body: string(body)}
}
