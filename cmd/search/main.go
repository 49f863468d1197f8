package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/justicesearch/internal/cli"
	"github.com/cloo-solutions/justicesearch/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "search",
		Short: "Query the justice search API",
		Long: `search queries a running searchd instance.

Environment variables:
  JUSTICESEARCH_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.BindEnv(rootCmd.PersistentFlags(), "api-url", client.EnvAPIURL)
	cli.AddHelpJSONFlag(rootCmd)

	// "search search <q>" reads poorly, so the query command is "find"
	find := client.SearchCmd()
	find.Use = "find <query>"
	find.Aliases = []string{"q"}

	rootCmd.AddCommand(find)
	rootCmd.AddCommand(client.QuickCmd())
	rootCmd.AddCommand(client.ProvidersCmd())

	if handled, err := cli.HelpJSON(rootCmd, os.Args[1:], os.Stdout); handled {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
