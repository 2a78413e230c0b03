package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/service"
)

// AddTransaction inserts one ledger entry and returns its id.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := s.addTransactionTx(ctx, tx, txn)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func (s *SQLiteStorage) addTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) (int64, error) {
	createdAt := txn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var walletID any
	if txn.WalletID > 0 {
		walletID = txn.WalletID
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (user_id, type, amount, category, note, wallet_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.UserID, string(txn.Direction), txn.Amount, txn.Category, txn.Note, walletID, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}
	return id, nil
}

// GetTransaction returns one transaction owned by the user.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, userID, txnID int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, amount, category, note, wallet_id, created_at
		FROM transactions
		WHERE id = ? AND user_id = ?`,
		txnID, userID,
	)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", txnID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetRecentTransactions returns the newest transactions first.
func (s *SQLiteStorage) GetRecentTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, category, note, wallet_id, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

// DeleteTransaction removes one transaction owned by the user.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, userID, txnID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`,
		txnID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", txnID, common.ErrNotFound)
	}
	return nil
}

// UpdateTransactionAmount overwrites the amount of one transaction.
func (s *SQLiteStorage) UpdateTransactionAmount(ctx context.Context, userID, txnID int64, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}
	return s.updateTransactionField(ctx, userID, txnID, "amount", amount)
}

// UpdateTransactionCategory overwrites the category label of one transaction.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, userID, txnID int64, category string) error {
	if err := validateString(category, "category"); err != nil {
		return err
	}
	return s.updateTransactionField(ctx, userID, txnID, "category", category)
}

// UpdateTransactionNote overwrites the note of one transaction. An empty
// note clears it.
func (s *SQLiteStorage) UpdateTransactionNote(ctx context.Context, userID, txnID int64, note string) error {
	return s.updateTransactionField(ctx, userID, txnID, "note", note)
}

func (s *SQLiteStorage) updateTransactionField(ctx context.Context, userID, txnID int64, column string, value any) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// column is always one of the three editable fields, never user input
	query := fmt.Sprintf(`UPDATE transactions SET %s = ? WHERE id = ? AND user_id = ?`, column)
	res, err := s.db.ExecContext(ctx, query, value, txnID, userID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", column, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", txnID, common.ErrNotFound)
	}
	return nil
}

// GetSummary aggregates income and expense over `[start, end)`.
func (s *SQLiteStorage) GetSummary(ctx context.Context, userID int64, start, end time.Time) (*service.PeriodSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %v is before start %v", end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY type`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := &service.PeriodSummary{}
	for rows.Next() {
		var direction string
		var total float64
		if err := rows.Scan(&direction, &total); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		switch model.Direction(direction) {
		case model.DirectionIncome:
			summary.Income = total
		case model.DirectionExpense:
			summary.Expense = total
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary: %w", err)
	}
	return summary, nil
}

// GetCategorySummaryMonth breaks down one calendar month's expenses by
// category, largest first. The window is `[first-of-month,
// first-of-next-month)` in UTC.
func (s *SQLiteStorage) GetCategorySummaryMonth(ctx context.Context, userID int64, year int, month time.Month) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	start, end := monthWindow(year, month)
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(amount), 0) AS total
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND created_at >= ? AND created_at < ?
		GROUP BY category
		ORDER BY total DESC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []service.CategoryTotal
	for rows.Next() {
		var ct service.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summary: %w", err)
	}
	return totals, nil
}

// GetTransactionsForExport returns transactions with wallet names joined,
// oldest first, optionally filtered to one month or one wallet.
func (s *SQLiteStorage) GetTransactionsForExport(ctx context.Context, userID int64, filter service.ExportFilter) ([]service.ExportRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT t.id, t.created_at, t.type, t.amount, t.category, t.note,
			COALESCE(w.name, '')
		FROM transactions t
		LEFT JOIN wallets w ON t.wallet_id = w.id
		WHERE t.user_id = ?`
	args := []any{userID}

	if filter.Year != 0 {
		start, end := monthWindow(filter.Year, filter.Month)
		query += ` AND t.created_at >= ? AND t.created_at < ?`
		args = append(args, start, end)
	}
	if filter.WalletID != 0 {
		query += ` AND t.wallet_id = ?`
		args = append(args, filter.WalletID)
	}
	query += ` ORDER BY t.created_at ASC, t.id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []service.ExportRow
	for rows.Next() {
		var r service.ExportRow
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Direction, &r.Amount, &r.Category, &r.Note, &r.WalletName); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var direction string
	var walletID sql.NullInt64
	if err := row.Scan(&txn.ID, &txn.UserID, &direction, &txn.Amount, &txn.Category, &txn.Note, &walletID, &txn.CreatedAt); err != nil {
		return nil, err
	}
	txn.Direction = model.Direction(direction)
	if walletID.Valid {
		txn.WalletID = walletID.Int64
	}
	return &txn, nil
}

// monthWindow returns `[first-of-month, first-of-next-month)` in UTC.
func monthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
