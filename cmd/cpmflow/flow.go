package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhsdigital/cpmflow/internal/flow"
)

var flowCmd = &cobra.Command{
	Use:   "flow [name]",
	Short: "Open the wizard on a flow, or list the flows",
	Long: `Open the interactive wizard directly on a flow.

The name is a flow id (creation, search, deleteProduct, deleteTeam,
readProduct, readTeam) or its tool name (eg. create_product).
Without a name the available flows are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs := flow.Catalog(flow.Options{})
		if len(args) == 0 {
			out := cmd.OutOrStdout()
			for _, def := range defs {
				fmt.Fprintf(out, "%-14s %-20s %s\n", def.ID, def.Tool, def.Title)
			}
			return nil
		}

		def, err := resolveFlow(defs, args[0])
		if err != nil {
			return err
		}
		return runTUI(cmd, def.ID)
	},
}
