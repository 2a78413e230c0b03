package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hxngan/vitien/internal/report"
	"github.com/hxngan/vitien/internal/service"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Long: `Write a user's transactions to a CSV file (or stdout), optionally
limited to one calendar month or one wallet.`,
		RunE: runExport,
	}

	cmd.Flags().String("user", "", "external user id, e.g. discord:1234 (required)")
	cmd.Flags().String("month", "", "calendar month to export, formatted 2006-01")
	cmd.Flags().Int64("wallet", 0, "restrict to one wallet id")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	externalID, _ := cmd.Flags().GetString("user")
	monthArg, _ := cmd.Flags().GetString("month")
	walletID, _ := cmd.Flags().GetInt64("wallet")
	output, _ := cmd.Flags().GetString("output")

	filter := service.ExportFilter{WalletID: walletID}
	if monthArg != "" {
		m, err := time.Parse("2006-01", monthArg)
		if err != nil {
			return fmt.Errorf("invalid --month %q, expected format 2006-01: %w", monthArg, err)
		}
		filter.Year, filter.Month = m.Year(), m.Month()
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reporter := report.NewReporter(store)
	userID, err := reporter.UserID(ctx, externalID)
	if err != nil {
		return err
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	return reporter.WriteCSV(ctx, out, userID, filter)
}
