package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallerhub/docpipe/constants"
	"github.com/tallerhub/docpipe/internal/pipeline"
)

func newExtractCmd() *cobra.Command {
	var (
		docType      string
		providerName string
		model        string
		outPath      string
	)
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract and reconcile one document",
		Long:  "Reads document text from a file (or '-' for stdin), runs it through the configured provider, and prints the reconciled result as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *deps) error {
				doc, err := d.extractor.Extract(cmd.Context(), pipeline.Request{
					Type:     parseDocType(docType),
					Text:     text,
					Provider: providerName,
					Model:    model,
				})
				if err != nil {
					return err
				}
				return writeJSON(outPath, doc)
			})
		},
	}
	cmd.Flags().StringVarP(&docType, "type", "t", "invoice", "Document type: invoice or appointment")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Provider override (deepseek, google_gemini, openai, lm_studio)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model override")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write result JSON to a file instead of stdout")
	return cmd
}

func parseDocType(s string) constants.DocumentType {
	if s == "appointment" {
		return constants.DocumentAppointment
	}
	return constants.DocumentInvoice
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(b), nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if path == "" {
		fmt.Println(string(b))
		return nil
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
