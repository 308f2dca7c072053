// Package main implements the admin command-line client for the backup
// service.
package main

import (
	"cmp"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/stocktrack/stockkeeper/internal/client/api"
)

// Build information (set by ldflags)
var (
	version   string
	buildDate string
)

var (
	serverURL  string
	adminLogin string
)

// rootCmd is the top-level command; all subcommands hang off it.
var rootCmd = &cobra.Command{
	Use:   "stockctl",
	Short: "Administer backups of the inventory service",
	Long: `stockctl manages the backup catalog of the inventory service:
listing, creating, validating, downloading, deleting, and restoring
backups, plus the automatic backup configuration.

Examples:
  # List backups
  stockctl list

  # Take a manual backup in the compressed JSON format
  stockctl create --format json.gz

  # Restore interactively
  stockctl restore 2f9d1c7e`,
	SilenceUsage: true,
}

// versionCmd prints build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build version and date",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Version: %s\n", cmp.Or(version, "N/A"))
		fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))
	},
}

// newClient builds the API client from the persistent flags.
func newClient() *api.Client {
	return api.New(serverURL, adminLogin, http.DefaultClient)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("STOCKKEEPER_SERVER", "http://localhost:8080"), "server base URL")
	rootCmd.PersistentFlags().StringVar(&adminLogin, "login",
		envOr("STOCKKEEPER_LOGIN", ""), "acting admin login")

	rootCmd.AddCommand(versionCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
