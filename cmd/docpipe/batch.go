package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallerhub/docpipe/internal/document"
	"github.com/tallerhub/docpipe/internal/pipeline"
)

func newBatchCmd() *cobra.Command {
	var (
		docType      string
		providerName string
		outDir       string
	)
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Extract a set of documents sequentially",
		Long:  "Queues every input file and processes them one at a time with a pause between items. A failed document is reported and skipped; the rest of the batch continues.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				queue := pipeline.NewBatchQueue(d.extractor, d.cfg.Batch, d.logger)

				type outcome struct {
					path string
					doc  *document.ReconciledDocument
					err  error
				}
				results := make(chan outcome, len(args))

				for _, path := range args {
					path := path
					text, err := readInput(path)
					if err != nil {
						results <- outcome{path: path, err: err}
						continue
					}
					err = queue.Enqueue(cmd.Context(), pipeline.BatchJob{
						ID: path,
						Request: pipeline.Request{
							Type:     parseDocType(docType),
							Text:     text,
							Provider: providerName,
						},
						Done: func(doc *document.ReconciledDocument, err error) {
							results <- outcome{path: path, doc: doc, err: err}
						},
					})
					if err != nil {
						results <- outcome{path: path, err: err}
					}
				}

				failed := 0
				for range args {
					res := <-results
					if res.err != nil {
						failed++
						fmt.Printf("FAIL  %s: %v\n", res.path, res.err)
						continue
					}
					fmt.Printf("OK    %s (confidence %d, %s)\n",
						res.path, res.doc.Report.Confidence, res.doc.Report.Tier())
					if outDir != "" {
						out := filepath.Join(outDir, filepath.Base(res.path)+".json")
						if err := writeJSON(out, res.doc); err != nil {
							fmt.Printf("WARN  %s: %v\n", res.path, err)
						}
					}
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				queue.Shutdown(shutdownCtx)

				if failed > 0 {
					return fmt.Errorf("%d of %d documents failed", failed, len(args))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&docType, "type", "t", "invoice", "Document type: invoice or appointment")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Provider override")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory to write per-document result JSON")
	return cmd
}
