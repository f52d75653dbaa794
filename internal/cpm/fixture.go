package cpm

import "encoding/json"

// FixtureProductID is the id of the canned read product payload.
const FixtureProductID = "P.33A-KJ4"

// FixtureProductRead returns the canned read product payload. The requested
// id is not consulted.
func FixtureProductRead() ProductRead {
	return ProductRead{
		ID:               FixtureProductID,
		CPMProductTeamID: "0a5f4e25-ecdf-489d-80cf-5bd02ee14db0",
		Name:             "My Great Product",
		ODSCode:          "F5H1R",
		Status:           "active",
		CreatedOn:        "2025-03-05T12:08:42.659073+00:00",
		Keys:             []any{},
	}
}

// StubReadProduct answers a read product request from the fixture without
// touching the network.
func StubReadProduct(string) Reply[ProductRead] {
	v := FixtureProductRead()
	raw, _ := json.Marshal(v)
	return Reply[ProductRead]{Value: v, Status: 200, Raw: raw}
}
