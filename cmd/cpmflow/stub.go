package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/stub"
)

var stubFlags struct {
	addr string
}

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run an in-memory CPM API for local testing",
	Long: `Run an in-memory stand-in for the CPM product and product team API.

Point the other commands at it with --base-url or CPMFLOW_BASE_URL, eg.

  cpmflow stub --addr :8080
  cpmflow -e local --api-key any --base-url http://localhost:8080 team create --ods-code ABC --name "Team A"`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().StringVar(&stubFlags.addr, "addr", ":8080", "Listen address")
}

func runStub(cmd *cobra.Command, args []string) error {
	srv := stub.New(stub.Options{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(stubFlags.addr)
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "CPM stub listening on %s\n", stubFlags.addr)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("stub server: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	logger.Info("Stopping CPM stub")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
