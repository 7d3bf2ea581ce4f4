package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/pkg/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage the deferred document queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newQueueDrainCommand(ctx))
	return cmd
}

func newQueueDrainCommand(ctx *commandContext) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Drain all persisted batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if *ctx.queueDB == "" {
				return errors.New("a --queue-db path is required")
			}
			store, err := queue.Open(*ctx.queueDB)
			if err != nil {
				return err
			}
			defer store.Close()

			registry := queue.NewRegistry()
			gen, err := ctx.generator()
			if err != nil {
				return err
			}
			if err := gen.RegisterCallbacks(registry); err != nil {
				return err
			}

			logger := ctx.logger()
			q := queue.New(registry, queue.WithStore(store), queue.WithLogger(logger))
			dispatcher := queue.NewDispatcher(q, concurrency, logger)
			if err := dispatcher.DrainStored(cmd.Context()); err != nil {
				return err
			}

			pending, err := store.Pending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queue drained, %d tasks pending\n", pending)
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Concurrent batches")
	return cmd
}
