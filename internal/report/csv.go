package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/hxngan/vitien/internal/service"
)

var csvHeader = []string{"id", "datetime_utc", "type", "amount", "category", "note", "wallet"}

// WriteCSV streams the user's transactions matching the filter as CSV,
// oldest first. Amounts are rounded to whole đồng.
func (r *Reporter) WriteCSV(ctx context.Context, w io.Writer, userID int64, filter service.ExportFilter) error {
	rows, err := r.store.GetTransactionsForExport(ctx, userID, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			row.Direction,
			strconv.FormatFloat(row.Amount, 'f', 0, 64),
			row.Category,
			row.Note,
			row.WalletName,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", row.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
