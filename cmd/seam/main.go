package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/loomworks/seam/internal/client"
	"github.com/loomworks/seam/internal/ui"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool
	noColor    bool
)

func defaultServerURL() string {
	if s := os.Getenv("SEAM_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

// newClient builds a client for the configured server. Only the commands
// that talk to a server call this; analysis commands run the engine locally.
func newClient() client.SeamClient {
	return client.NewHTTPClient(serverURL, authToken)
}

var rootCmd = &cobra.Command{
	Use:   "seam <command>",
	Short: "Dependency-injection wiring discovery and repair",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "seam server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("SEAM_AUTH_TOKEN"), "bearer token for server requests")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "analysis", Title: "Analysis:"},
		&cobra.Group{ID: "server", Title: "Server:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Analysis (local, no server needed)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(orphansCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(fixCmd)

	// Server
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
