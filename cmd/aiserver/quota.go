package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gigmarket-ai/internal/ratelimit"
)

func newQuotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota <user-id>",
		Short: "Show a user's remaining daily quota per feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			statuses, err := a.limiter.Overview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeQuotaTable(cmd.OutOrStdout(), statuses)
		},
	}
}

func writeQuotaTable(out io.Writer, statuses []ratelimit.Status) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FEATURE\tUSED\tLIMIT\tREMAINING\tALLOWED")
	for _, s := range statuses {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%t\n", s.Feature, s.Used, s.Limit, s.Remaining, s.Allowed)
	}
	return w.Flush()
}
