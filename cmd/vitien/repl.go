package main

import (
	"github.com/spf13/cobra"

	"github.com/hxngan/vitien/internal/cli"
	"github.com/hxngan/vitien/internal/engine"
	"github.com/hxngan/vitien/internal/report"
)

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat with the ledger locally",
		Long:  `A terminal chat loop against the same engine the bot uses, for development.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return cli.NewREPL(engine.New(store), report.NewReporter(store)).Run(ctx)
		},
	}
}
