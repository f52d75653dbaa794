package main

import (
	"github.com/spf13/cobra"

	"github.com/nhsdigital/cpmflow/internal/flow"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Create, read and delete product teams headless",
}

func init() {
	teamCmd.AddCommand(
		headlessCmd("create", "Create a product team", flow.Creation, flow.SlotTeam,
			fieldFlag{"ods-code", flow.FieldTeamODSCode, "ODS code of the team"},
			fieldFlag{"name", flow.FieldTeamName, "Team name"},
		),
		headlessCmd("read", "Read a product team", flow.ReadTeam, "",
			fieldFlag{"id", flow.FieldProductTeamID, "Product team id"},
		),
		headlessCmd("delete", "Delete a product team", flow.DeleteTeam, "",
			fieldFlag{"id", flow.FieldProductTeamID, "Product team id"},
		),
	)
}
