package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host     string
	team     string
	password string
	dryRun   bool
)

var rootCmd = &cobra.Command{
	Use:   "academy-cli",
	Short: "A CLI to interact with the academy-stats server",
	Long: `A command-line interface for making requests to the various endpoints
of the academy-stats application.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&team, "team", "", "Team of the player (empty for single-team mode)")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("COACH_PASSWORD"), "Coach password for coach-only commands")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Validate mutations without persisting them")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
