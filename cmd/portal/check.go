package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-portal/internal/client"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fetch the doctor list from the backend and report the outcome",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, l, err := opts.load()
			if err != nil {
				return err
			}
			backend, err := client.New(client.Config{
				BaseURL:            cfg.Backend.BaseURL,
				Timeout:            cfg.Backend.Timeout,
				BreakerMaxFailures: cfg.Backend.BreakerMaxFailures,
				BreakerTimeout:     cfg.Backend.BreakerTimeout,
				UserAgent:          cfg.Backend.UserAgent,
			}, client.WithLogger(l))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Backend.Timeout)
			defer cancel()
			return check(ctx, backend, cmd)
		},
	}
}

func check(ctx context.Context, backend *client.Client, cmd *cobra.Command) error {
	result := backend.GetDoctors(ctx)
	if result.Failed() {
		return fmt.Errorf("backend check failed: %w", result.Err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backend reachable: %d doctor(s) listed\n", len(result.Items))
	return nil
}
