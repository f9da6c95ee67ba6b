package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the catalog snapshot",
	}
	cmd.AddCommand(newCatalogRefreshCmd())
	return cmd
}

func newCatalogRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a snapshot rebuild and print entity counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				snap, err := d.catalog.Refresh(cmd.Context())
				if err != nil {
					return fmt.Errorf("refreshing catalog: %w", err)
				}
				cats, sups, prods, custs, vehs := snap.Counts()
				fmt.Printf("Snapshot built at %s\n", snap.BuiltAt().Format("2006-01-02 15:04:05"))
				fmt.Printf("  categories: %d\n", cats)
				fmt.Printf("  suppliers:  %d\n", sups)
				fmt.Printf("  products:   %d\n", prods)
				fmt.Printf("  customers:  %d\n", custs)
				fmt.Printf("  vehicles:   %d\n", vehs)
				return nil
			})
		},
	}
}
