package flow

import (
	"context"

	"github.com/nhsdigital/cpmflow/internal/cpm"
)

// Action slots.
const (
	SlotTeam    = "team"
	SlotProduct = "product"
	SlotDelete  = "delete"
	SlotSearch  = "search"
	SlotRead    = "read"
)

// CapturedTeamID is the captured key holding the created team's id.
const CapturedTeamID = "team_id"

// Options tunes the catalog.
type Options struct {
	// LiveReadProduct calls GET /Product/{id} instead of the fixture.
	LiveReadProduct bool
	// ProductNameFromProductStep sends the product step's name when creating
	// a product. By default the team's ods_code and name are sent.
	ProductNameFromProductStep bool
}

// Catalog returns every flow in selector order.
func Catalog(opts Options) []*Definition {
	return []*Definition{
		creationFlow(opts),
		searchFlow(),
		deleteProductFlow(),
		deleteTeamFlow(),
		readProductFlow(opts),
		readTeamFlow(),
	}
}

// Lookup finds a flow by id in defs.
func Lookup(defs []*Definition, id ID) (*Definition, bool) {
	for _, d := range defs {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

func environmentStep() Step {
	return Step{
		Title:   "Environment Configuration",
		Heading: "Configure Environment",
		Fields: []Field{
			{Key: FieldEnvironment, Label: "Environment", Placeholder: "eg. internal-dev, internal-qa, ref, int", Required: true},
			{Key: FieldAPIKey, Label: "API Key", Secret: true, Required: true},
		},
		CanAdvance: Filled(FieldEnvironment, FieldAPIKey),
	}
}

func payloadOf[T any](r cpm.Reply[T], err error) (Payload, error) {
	if err != nil {
		return Payload{Raw: r.Raw, Status: r.Status, CorrelationID: r.CorrelationID}, err
	}
	return Payload{Value: r.Value, Raw: r.Raw, Status: r.Status, CorrelationID: r.CorrelationID}, nil
}

func creationFlow(opts Options) *Definition {
	createTeam := func(ctx context.Context, api API, in Input) (Payload, error) {
		r, err := api.CreateProductTeam(ctx, in.Env, cpm.TeamInput{
			ODSCode: in.Value(FieldTeamODSCode),
			Name:    in.Value(FieldTeamName),
		})
		return payloadOf(r, err)
	}

	createProduct := func(ctx context.Context, api API, in Input) (Payload, error) {
		body := cpm.ProductInput{
			ODSCode: in.Value(FieldTeamODSCode),
			Name:    in.Value(FieldTeamName),
		}
		if opts.ProductNameFromProductStep {
			body.Name = in.Value(FieldProductName)
		}
		r, err := api.CreateProduct(ctx, in.Env, in.Captured[CapturedTeamID], body)
		return payloadOf(r, err)
	}

	return &Definition{
		ID:          Creation,
		Tool:        "create_product",
		Title:       "Product Creation Flow",
		Description: "Create a **product team**, then create a **product** inside it.\n\nThe team id from the first response is used for the second call.\n\nBoth calls go to the environment exactly as entered, so type the full host label, eg. `internal-dev`.",
		Steps: []Step{
			environmentStep(),
			{
				Title:   "Product Team Creation",
				Heading: "Create Product Team",
				Fields: []Field{
					{Key: FieldTeamODSCode, Label: "ODS Code", Required: true},
					{Key: FieldTeamName, Label: "Team Name", Required: true},
				},
				Action: &Action{
					Slot:      SlotTeam,
					Label:     "Create Product Team",
					BusyLabel: "Creating...",
					Enabled:   Filled(FieldTeamODSCode, FieldTeamName),
					Once:      true,
					Run:       createTeam,
					Failure:   FailurePolicy{Message: "Failed to create Product Team. Please try again.", Detailed: true},
					Capture: func(p Payload) map[string]string {
						team, _ := p.Value.(cpm.ProductTeam)
						return map[string]string{CapturedTeamID: team.ID}
					},
				},
				CanAdvance: Succeeded(SlotTeam),
				FreezeOn:   SlotTeam,
				Echo: func(p Payload) map[string]string {
					team, _ := p.Value.(cpm.ProductTeam)
					return map[string]string{FieldTeamODSCode: team.ODSCode, FieldTeamName: team.Name}
				},
				SuccessBanner: "Product Team created successfully",
			},
			{
				Title:   "Product Creation",
				Heading: "Create Product",
				Fields: []Field{
					{Key: FieldProductName, Label: "Name", Required: true},
				},
				Action: &Action{
					Slot:      SlotProduct,
					Label:     "Create Product",
					BusyLabel: "Creating...",
					Enabled:   Filled(FieldProductName),
					Once:      true,
					Run:       createProduct,
					Failure:   FailurePolicy{Message: "Failed to create Product. Please try again."},
				},
				FreezeOn: SlotProduct,
				Echo: func(p Payload) map[string]string {
					product, _ := p.Value.(cpm.Product)
					return map[string]string{FieldProductName: product.Name}
				},
				SuccessBanner: "Product created successfully",
			},
		},
	}
}

func searchFlow() *Definition {
	search := func(ctx context.Context, api API, in Input) (Payload, error) {
		r, err := api.SearchProducts(ctx, in.Env, cpm.SearchQuery{
			OrganisationCode: in.Value(FieldOrganisationCode),
			ProductTeamID:    in.Value(FieldProductTeamID),
		})
		return payloadOf(r, err)
	}

	return &Definition{
		ID:          Search,
		Tool:        "search_products",
		Title:       "Product Search Flow",
		Description: "Search products by **organisation code** and/or **product team id**.\n\nEmpty filters are left out of the query.",
		Steps: []Step{
			environmentStep(),
			{
				Title:   "Product Search",
				Heading: "Search for Products",
				Fields: []Field{
					{Key: FieldOrganisationCode, Label: "Organisation Code"},
					{Key: FieldProductTeamID, Label: "Product Team ID"},
				},
				Action: &Action{
					Slot:      SlotSearch,
					Label:     "Search",
					BusyLabel: "Searching...",
					Run:       search,
					Failure:   FailurePolicy{Message: "Failed to fetch search results. Please try again."},
				},
			},
		},
	}
}

func deleteProductFlow() *Definition {
	del := func(ctx context.Context, api API, in Input) (Payload, error) {
		r, err := api.DeleteProduct(ctx, in.Env, in.Value(FieldProductTeamID), in.Value(FieldProductID))
		return payloadOf(r, err)
	}

	return &Definition{
		ID:          DeleteProduct,
		Tool:        "delete_product",
		Title:       "Product Delete Flow",
		Description: "Delete one **product** from a product team.",
		Steps: []Step{
			environmentStep(),
			{
				Title:   "Product Delete",
				Heading: "Delete A Product",
				Fields: []Field{
					{Key: FieldProductTeamID, Label: "Product Team ID", Required: true},
					{Key: FieldProductID, Label: "Product ID", Required: true},
				},
				Action: &Action{
					Slot:      SlotDelete,
					Label:     "Delete",
					BusyLabel: "Deleting...",
					Enabled:   Filled(FieldProductTeamID, FieldProductID),
					Run:       del,
					Failure:   FailurePolicy{Message: "Failed to delete Product. Please try again.", Detailed: true},
				},
			},
		},
	}
}

func deleteTeamFlow() *Definition {
	del := func(ctx context.Context, api API, in Input) (Payload, error) {
		r, err := api.DeleteProductTeam(ctx, in.Env, in.Value(FieldProductTeamID))
		return payloadOf(r, err)
	}

	return &Definition{
		ID:          DeleteTeam,
		Tool:        "delete_product_team",
		Title:       "Product Team Delete Flow",
		Description: "Delete a **product team**.",
		Steps: []Step{
			environmentStep(),
			{
				Title:   "Product Team Delete",
				Heading: "Delete A Product Team",
				Fields: []Field{
					{Key: FieldProductTeamID, Label: "Product Team ID", Required: true},
				},
				Action: &Action{
					Slot:      SlotDelete,
					Label:     "Delete",
					BusyLabel: "Deleting...",
					Enabled:   Filled(FieldProductTeamID),
					Run:       del,
					Failure:   FailurePolicy{Message: "Failed to delete Product Team. Please try again.", Detailed: true},
				},
			},
		},
	}
}

func readProductFlow(opts Options) *Definition {
	read := func(ctx context.Context, api API, in Input) (Payload, error) {
		if !opts.LiveReadProduct {
			return payloadOf(cpm.StubReadProduct(in.Value(FieldProductID)), nil)
		}
		r, err := api.ReadProduct(ctx, in.Env, in.Value(FieldProductID))
		return payloadOf(r, err)
	}

	desc := "Read one **product** by id.\n\nAnswers from a built-in fixture unless `live_read_product` is enabled."
	if opts.LiveReadProduct {
		desc = "Read one **product** by id."
	}

	return &Definition{
		ID:          ReadProduct,
		Tool:        "read_product",
		Title:       "Product Read Flow",
		Description: desc,
		Steps: []Step{
			environmentStep(),
			{
				Title:   "Product Read",
				Heading: "Read Product",
				Fields: []Field{
					{Key: FieldProductID, Label: "Product ID", Placeholder: cpm.FixtureProductID, Required: true},
				},
				Action: &Action{
					Slot:      SlotRead,
					Label:     "Read",
					BusyLabel: "Reading...",
					Enabled:   Filled(FieldProductID),
					Run:       read,
					Failure:   FailurePolicy{Message: "Failed to fetch Product results. Please try again."},
				},
			},
		},
	}
}

func readTeamFlow() *Definition {
	read := func(ctx context.Context, api API, in Input) (Payload, error) {
		r, err := api.ReadProductTeam(ctx, in.Env, in.Value(FieldProductTeamID))
		return payloadOf(r, err)
	}

	return &Definition{
		ID:          ReadTeam,
		Tool:        "read_product_team",
		Title:       "Product Team Read Flow",
		Description: "Read a **product team** by id.",
		Steps: []Step{
			environmentStep(),
			{
				Title:   "Product Team Read",
				Heading: "Read A Product Team",
				Fields: []Field{
					{Key: FieldProductTeamID, Label: "Product Team ID", Required: true},
				},
				Action: &Action{
					Slot:      SlotRead,
					Label:     "Read",
					BusyLabel: "Reading...",
					Enabled:   Filled(FieldProductTeamID),
					Run:       read,
					Failure:   FailurePolicy{Message: "Failed to fetch Product Team. Please try again.", Detailed: true},
				},
			},
		},
	}
}
