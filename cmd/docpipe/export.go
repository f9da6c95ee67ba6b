package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallerhub/docpipe/internal/document"
)

func newExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <result.json>",
		Short: "Render a reconciled invoice to XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading result: %w", err)
			}
			var doc document.ReconciledDocument
			if err := json.Unmarshal(b, &doc); err != nil {
				return fmt.Errorf("parsing result: %w", err)
			}

			return withDeps(cmd.Context(), func(d *deps) error {
				data, err := d.exporter.InvoiceXLSX(&doc)
				if err != nil {
					return err
				}
				if outPath == "" {
					outPath = strings.TrimSuffix(args[0], ".json") + ".xlsx"
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("writing workbook: %w", err)
				}
				fmt.Printf("Wrote %s\n", outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output .xlsx path")
	return cmd
}
