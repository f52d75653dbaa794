package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhsdigital/cpmflow/internal/config"
)

var setupFlags struct {
	project bool
	force   bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create cpmflow configuration file",
	Long: `Create a cpmflow configuration file with sensible defaults.

By default, creates a global config at ~/.config/cpmflow/cpmflow.yml.
Use --project to create a project-local config in the current directory.
The --environment and --api-key flags are written into the file.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := &config.Config{
		Environment:   globalFlags.environment,
		APIKey:        globalFlags.apiKey,
		APIDomain:     config.DefaultAPIDomain,
		APIPath:       config.DefaultAPIPath,
		BaseURL:       globalFlags.baseURL,
		Authorization: config.DefaultAuthorization,
		APIVersion:    config.DefaultAPIVersion,
		LogLevel:      config.DefaultLogLevel,
	}
	if globalFlags.logLevel != "" {
		cfg.LogLevel = globalFlags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config written to: %s\n\n", targetPath)
	fmt.Fprintln(out, "Run 'cpmflow' to get started.")
	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
