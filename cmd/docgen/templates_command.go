package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the available document templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newTemplatesListCommand(ctx))
	return cmd
}

func newTemplatesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates across site, network, and core tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			listed, err := ctx.resolver().List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVERSION\tGROUP\tSOURCE\tSTATUS")
			for _, d := range listed {
				status := "ok"
				if d.Incompatible {
					status = fmt.Sprintf("requires %s", d.Header.RequiredVersion)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					d.ID, d.Header.Name, d.Header.Version, d.Header.Group, d.Source, status)
			}
			return w.Flush()
		},
	}
}
