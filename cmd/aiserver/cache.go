package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gigmarket-ai/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the AI response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.cache.PurgeExpired(cmd.Context())
			if errors.Is(err, cache.ErrPurgeUnsupported) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s backend expires entries itself; nothing to purge\n", a.cfg.StoreBackend)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired entries\n", n)
			return nil
		},
	})
	return cmd
}
