package main

import (
	"github.com/spf13/cobra"

	"github.com/nhsdigital/cpmflow/internal/flow"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Create, search, read and delete products headless",
}

func init() {
	productCmd.AddCommand(
		headlessCmd("create", "Create a product team and a product in it", flow.Creation, "",
			fieldFlag{"team-ods-code", flow.FieldTeamODSCode, "ODS code of the new team"},
			fieldFlag{"team-name", flow.FieldTeamName, "Name of the new team"},
			fieldFlag{"name", flow.FieldProductName, "Product name"},
		),
		headlessCmd("search", "Search products by organisation or team", flow.Search, "",
			fieldFlag{"org-code", flow.FieldOrganisationCode, "Organisation code filter"},
			fieldFlag{"team-id", flow.FieldProductTeamID, "Product team id filter"},
		),
		headlessCmd("read", "Read a product", flow.ReadProduct, "",
			fieldFlag{"id", flow.FieldProductID, "Product id"},
		),
		headlessCmd("delete", "Delete a product", flow.DeleteProduct, "",
			fieldFlag{"team-id", flow.FieldProductTeamID, "Product team id"},
			fieldFlag{"id", flow.FieldProductID, "Product id"},
		),
	)
}
