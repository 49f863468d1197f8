package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/cloo-solutions/justicesearch/internal/domain"
	"github.com/spf13/cobra"
)

type searchFlags struct {
	region   string
	types    []string
	sources  []string
	mode     string
	org      string
	page     int
	limit    int
	verified bool
}

// params encodes the flags the user actually set.
func (f searchFlags) params(cmd *cobra.Command, query string) url.Values {
	v := url.Values{"q": {query}}
	if f.region != "" {
		v.Set("region", f.region)
	}
	if len(f.types) > 0 {
		v.Set("types", strings.Join(f.types, ","))
	}
	if len(f.sources) > 0 {
		v.Set("sources", strings.Join(f.sources, ","))
	}
	if f.mode != "" {
		v.Set("mode", f.mode)
	}
	if cmd.Flags().Changed("page") {
		v.Set("page", strconv.Itoa(f.page))
	}
	if cmd.Flags().Changed("limit") {
		v.Set("limit", strconv.Itoa(f.limit))
	}
	if cmd.Flags().Changed("verified") {
		v.Set("verified", strconv.FormatBool(f.verified))
	}
	return v
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search programs, services, people and media",
		Long: `Runs a federated search across every configured source.

Examples:
  search "healing programs in NSW"
  search "bail support" --types program,service --limit 5
  search "youth stories" --org 6f1c... --mode fast`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			resp, err := FromCommand(cmd).Search(cmd.Context(), flags.org, flags.params(cmd, args[0]))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printSearch(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.region, "region", "r", "", "Restrict to a state or territory code")
	cmd.Flags().StringSliceVarP(&flags.types, "types", "t", nil, "Entity types to search")
	cmd.Flags().StringSliceVar(&flags.sources, "source", nil, "Enable or disable a source, e.g. media_hub:false")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Search mode: fast or comprehensive")
	cmd.Flags().StringVar(&flags.org, "org", "", "Scope the search to one organization")
	cmd.Flags().IntVarP(&flags.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", domain.DefaultLimit, "Results per page")
	cmd.Flags().BoolVar(&flags.verified, "verified", false, "Only elder-approved or verified results")

	return cmd
}

// QuickCmd creates the quick command used for type-ahead lookups.
func QuickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quick <prefix>",
		Short: "Type-ahead lookup against the internal store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			results, err := FromCommand(cmd).Quick(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("quick search failed: %w", err)
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%-13s %s\n", r.Type, r.Title)
			}
			return nil
		},
	}
}

// ProvidersCmd lists configured sources and whether they respond.
func ProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show search sources and their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			providers, err := FromCommand(cmd).Providers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list providers: %w", err)
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), providers)
			}
			for _, p := range providers {
				status := "up"
				if !p.Available {
					status = "down"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-4s %s\n", p.Name, status, p.Category)
			}
			return nil
		},
	}
}

func printSearch(w io.Writer, resp *domain.UnifiedSearchResponse) {
	for _, warning := range resp.Warnings {
		fmt.Fprintf(w, "! %s\n", warning)
	}

	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
	} else {
		fmt.Fprintf(w, "Found %d results (intent: %s, page %d):\n\n",
			resp.Pagination.Total, resp.Intent, resp.Pagination.Page)
		for i, r := range resp.Results {
			fmt.Fprintf(w, "%d. %s [%s] (%.2f)\n", i+1, r.Title, r.Type, r.Score)
			if r.Description != "" {
				fmt.Fprintf(w, "   %s\n", truncate(r.Description, 100))
			}
			fmt.Fprintf(w, "   %s\n", r.URL)
			if i < len(resp.Results)-1 {
				fmt.Fprintln(w, strings.Repeat("-", 40))
			}
		}
		if resp.Pagination.HasMore {
			fmt.Fprintf(w, "\nMore results available. Use --page %d\n", resp.Pagination.Page+1)
		}
	}

	if len(resp.Suggestions) > 0 {
		fmt.Fprintf(w, "\nTry: %s\n", strings.Join(resp.Suggestions, " | "))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
