package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var (
		dataFlag    string
		siteFlag    string
		networkFlag string
		optionsFlag string
		queueDBFlag string
		verboseFlag bool
	)

	ctx := newCommandContext(&dataFlag, &siteFlag, &networkFlag, &optionsFlag, &queueDBFlag, &verboseFlag)

	rootCmd := &cobra.Command{
		Use:           "docgen",
		Short:         "Render stored form submissions into documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dataFlag, "data", "d", "", "JSON file with the form, entries, and pdf profiles")
	rootCmd.PersistentFlags().StringVar(&siteFlag, "templates-dir", "", "Site template directory")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network-templates-dir", "", "Network template directory")
	rootCmd.PersistentFlags().StringVarP(&optionsFlag, "options", "o", "", "TOML options file")
	rootCmd.PersistentFlags().StringVar(&queueDBFlag, "queue-db", "", "SQLite queue database path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newTemplatesCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))

	return rootCmd
}
