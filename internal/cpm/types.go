package cpm

// Environment selects the deployment and carries the caller's API key.
type Environment struct {
	Name   string
	APIKey string
}

// TeamInput is the body of a create product team request.
type TeamInput struct {
	ODSCode string `json:"ods_code"`
	Name    string `json:"name"`
}

// ProductInput is the body of a create product request.
type ProductInput struct {
	ODSCode string `json:"ods_code"`
	Name    string `json:"name"`
}

// SearchQuery filters a product search. Empty fields are not sent.
type SearchQuery struct {
	OrganisationCode string
	ProductTeamID    string
}

// ProductTeam is a product team record.
type ProductTeam struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ODSCode   string  `json:"ods_code"`
	Status    string  `json:"status"`
	CreatedOn string  `json:"created_on"`
	UpdatedOn *string `json:"updated_on"`
	DeletedOn *string `json:"deleted_on"`
	Keys      []any   `json:"keys"`
}

// Product is a product record as returned by create and search.
type Product struct {
	ID            string  `json:"id"`
	ProductTeamID string  `json:"product_team_id"`
	Name          string  `json:"name"`
	ODSCode       string  `json:"ods_code"`
	Status        string  `json:"status"`
	CreatedOn     string  `json:"created_on"`
	UpdatedOn     *string `json:"updated_on"`
	DeletedOn     *string `json:"deleted_on"`
	Keys          []any   `json:"keys"`
}

// ProductRead is the read product shape, which names the team id differently.
type ProductRead struct {
	ID               string  `json:"id"`
	CPMProductTeamID string  `json:"cpm_product_team_id"`
	Name             string  `json:"name"`
	ODSCode          string  `json:"ods_code"`
	Status           string  `json:"status"`
	CreatedOn        string  `json:"created_on"`
	UpdatedOn        *string `json:"updated_on"`
	DeletedOn        *string `json:"deleted_on"`
	Keys             []any   `json:"keys"`
}

// DeleteResult is the body of a successful delete.
type DeleteResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchResponse is the body of a product search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchResult groups product teams under an organisation.
type SearchResult struct {
	OrgCode      string       `json:"org_code"`
	ProductTeams []SearchTeam `json:"product_teams"`
}

// SearchTeam lists the products of one team.
type SearchTeam struct {
	ProductTeamID string    `json:"product_team_id"`
	Products      []Product `json:"products"`
}

// record is implemented by payloads that carry an id.
type record interface {
	recordID() string
}

func (t ProductTeam) recordID() string { return t.ID }
func (p Product) recordID() string     { return p.ID }
func (p ProductRead) recordID() string { return p.ID }
