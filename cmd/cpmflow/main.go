package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/nhsdigital/cpmflow/internal/logger"
	"github.com/nhsdigital/cpmflow/internal/tui/theme"
)

const (
	logoText1 = "█▀▀ █▀█ █▀▄▀█ █▀▀ █   █▀█ █ █ █"
	logoText2 = "█▄▄ █▀▀ █ ▀ █ █▀  █▄▄ █▄█ ▀▄▀▄▀"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		stop()
		_ = logger.Close()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cpmflow",
	Short: "Wizard test harness for the Connecting Party Manager API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, "")
	},
}

// renderLogo colors the logo with a gradient across its width.
func renderLogo() string {
	t := theme.Current()
	lines := []string{logoText1, logoText2}
	for i, line := range lines {
		runes := []rune(line)
		colors := theme.Gradient(t.Primary, t.Tertiary, len(runes))
		var b strings.Builder
		for j, r := range runes {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(colors[j])).Render(string(r)))
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

cpmflow drives the Connecting Party Manager product and product team API
through step-by-step flows: create a team and product, search, read and
delete. Run it without arguments for the interactive wizard, or use the
team and product commands to run the same flows headless.`

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&globalFlags.environment, "environment", "e", "", "Environment name, eg. internal-dev (overrides config)")
	pf.StringVar(&globalFlags.apiKey, "api-key", "", "API key sent in the apikey header (overrides config)")
	pf.StringVar(&globalFlags.baseURL, "base-url", "", "Send requests to this URL instead of the environment host")
	pf.StringVar(&globalFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(flowCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(stubCmd)
}
