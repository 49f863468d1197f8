package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/justicesearch/internal/config"
	"github.com/cloo-solutions/justicesearch/internal/logger"
	"github.com/cloo-solutions/justicesearch/internal/provider"
	"github.com/spf13/cobra"
)

// CheckCmd probes every configured provider without starting the server.
func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe configured search providers",
		Long:  "Connects to the store and every configured provider and reports which respond. Exits non-zero when any is down.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log, err := logger.NewLogger(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			stack, err := BuildStack(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer stack.Close()

			return reportAvailability(cmd, stack.Registry.All(), stack.Registry.Availability(ctx))
		},
	}

	cmd.Flags().Duration("timeout", 10*time.Second, "Overall time allowed for connecting and probing")

	return cmd
}

func reportAvailability(cmd *cobra.Command, providers []provider.Provider, availability map[string]bool) error {
	down := 0
	for _, p := range providers {
		status := "ok"
		if !availability[p.Name()] {
			status = "unavailable"
			down++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-12s %s\n", p.Name(), status, provider.CategoryOf(p))
	}
	if down > 0 {
		return fmt.Errorf("%d of %d providers unavailable", down, len(providers))
	}
	return nil
}

