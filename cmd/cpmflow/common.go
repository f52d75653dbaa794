package main

import (
	"fmt"
	"maps"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/nhsdigital/cpmflow/internal/config"
	"github.com/nhsdigital/cpmflow/internal/cpm"
	"github.com/nhsdigital/cpmflow/internal/flow"
	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/render"
	"github.com/nhsdigital/cpmflow/internal/tui"
)

var globalFlags struct {
	environment string
	apiKey      string
	baseURL     string
	logLevel    string
}

// loadConfig loads config, applies the persistent flags on top and
// configures the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if globalFlags.environment != "" {
		cfg.Environment = globalFlags.environment
	}
	if globalFlags.apiKey != "" {
		cfg.APIKey = globalFlags.apiKey
	}
	if globalFlags.baseURL != "" {
		cfg.BaseURL = globalFlags.baseURL
	}
	if globalFlags.logLevel != "" {
		cfg.LogLevel = globalFlags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *cpm.Client {
	return cpm.New(cpm.Options{
		Domain:        cfg.APIDomain,
		Path:          cfg.APIPath,
		BaseURL:       cfg.BaseURL,
		Authorization: cfg.Authorization,
		Version:       cfg.APIVersion,
	})
}

func catalog(cfg *config.Config) []*flow.Definition {
	return flow.Catalog(flow.Options{
		LiveReadProduct:            cfg.LiveReadProduct,
		ProductNameFromProductStep: cfg.ProductNameFromProductStep,
	})
}

// prefill returns the configured environment fields that are set.
func prefill(cfg *config.Config) map[string]string {
	values := make(map[string]string)
	if cfg.Environment != "" {
		values[flow.FieldEnvironment] = cfg.Environment
	}
	if cfg.APIKey != "" {
		values[flow.FieldAPIKey] = cfg.APIKey
	}
	return values
}

func renderOptions() render.Options {
	return render.Options{Location: time.Local, Now: time.Now}
}

// resolveFlow accepts a flow id or tool name, case-insensitively.
func resolveFlow(defs []*flow.Definition, name string) (*flow.Definition, error) {
	for _, def := range defs {
		if strings.EqualFold(string(def.ID), name) || strings.EqualFold(def.Tool, name) {
			return def, nil
		}
	}
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, string(def.ID))
	}
	return nil, fmt.Errorf("unknown flow %q (available: %s)", name, strings.Join(names, ", "))
}

func runTUI(cmd *cobra.Command, initial flow.ID) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := tui.NewApp(cmd.Context(), tui.Options{
		Definitions: catalog(cfg),
		API:         newClient(cfg),
		Prefill:     prefill(cfg),
		Initial:     initial,
		Render:      renderOptions(),
	})

	p := tea.NewProgram(app, tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// runHeadless drives a flow with values layered over the configured
// environment, prints the rendered result and fails when the flow failed.
func runHeadless(cmd *cobra.Command, id flow.ID, stopAfter string, values map[string]string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return drive(cmd, cfg, newClient(cfg), id, stopAfter, values)
}

func drive(cmd *cobra.Command, cfg *config.Config, api flow.API, id flow.ID, stopAfter string, values map[string]string) error {
	def, ok := flow.Lookup(catalog(cfg), id)
	if !ok {
		return fmt.Errorf("unknown flow %q", id)
	}

	merged := prefill(cfg)
	maps.Copy(merged, values)

	ctrl := flow.NewController(def, api, nil)
	defer ctrl.Close()

	st, err := flow.DriveUntil(cmd.Context(), ctrl, merged, stopAfter)
	out := cmd.OutOrStdout()
	for _, line := range render.Summary(st, renderOptions()) {
		fmt.Fprintln(out, line)
	}
	if err != nil {
		return err
	}
	if st.Banner() != "" {
		return fmt.Errorf("%s failed", strings.ToLower(def.Title))
	}
	return nil
}

// fieldFlag binds a command flag to a flow field.
type fieldFlag struct {
	name  string
	field string
	usage string
}

// headlessCmd builds a command that drives flow id with its flags.
func headlessCmd(use, short string, id flow.ID, stopAfter string, flags ...fieldFlag) *cobra.Command {
	bound := make(map[string]*string, len(flags))
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string)
			for _, f := range flags {
				if cmd.Flags().Changed(f.name) {
					values[f.field] = *bound[f.name]
				}
			}
			return runHeadless(cmd, id, stopAfter, values)
		},
	}
	for _, f := range flags {
		bound[f.name] = cmd.Flags().String(f.name, "", f.usage)
	}
	return cmd
}
