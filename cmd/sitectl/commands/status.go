package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func NewStatusCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current connection",
		Long: `Show the connection currently held by this process: target address,
authentication strategy, principal, and retry tuning. Secrets are never
printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, ok := rt.Slot.Current()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not connected")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected to:  %s\n", conn.BaseURL())
			fmt.Fprintf(out, "Strategy:      %s\n", conn.Strategy())
			fmt.Fprintf(out, "Principal:     %s\n", conn.Principal())
			if conn.AdminURL() != "" {
				fmt.Fprintf(out, "Admin URL:     %s\n", conn.AdminURL())
			}

			policy := conn.Policy()
			fmt.Fprintf(out, "Retry policy:  %d attempts, %ds wait, %dms timeout\n",
				policy.RetryCount, policy.RetryWaitSeconds, policy.RequestTimeoutMs)
			if policy.HealthGateEnabled() {
				fmt.Fprintf(out, "Health gate:   score > %d rejected\n", policy.MinimalHealthScore)
			}
			fmt.Fprintf(out, "Age:           %s\n", time.Since(conn.CreatedAt()).Round(time.Second))
			return nil
		},
	}
}
