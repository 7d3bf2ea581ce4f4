package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/pkg/generator"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		entryID string
		pdfID   string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render one entry's document on the trusted path",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := ctx.generator()
			if err != nil {
				return err
			}
			forms, _, err := ctx.loadStores()
			if err != nil {
				return err
			}
			entry, err := forms.GetEntry(cmd.Context(), entryID)
			if err != nil {
				return err
			}

			doc, err := gen.Generate(cmd.Context(), generator.Request{
				FormID:    entry.FormID,
				EntryID:   entryID,
				ProfileID: pdfID,
			})
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), doc.Markup)
				return nil
			}
			if err := os.WriteFile(output, []byte(doc.Markup), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document written to %s (%s)\n", output, doc.Filename)
			return nil
		},
	}

	cmd.Flags().StringVarP(&entryID, "entry", "e", "", "Entry id to render")
	cmd.Flags().StringVarP(&pdfID, "pdf", "p", "", "Pdf profile id to render with")
	cmd.Flags().StringVar(&output, "output", "", "Output file (stdout if empty)")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("pdf")

	return cmd
}
