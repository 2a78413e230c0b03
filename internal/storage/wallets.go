package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
)

// CreateWallet inserts a new wallet for a user.
func (s *SQLiteStorage) CreateWallet(ctx context.Context, userID int64, name string, purpose model.WalletPurpose) (*model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO wallets (user_id, name, purpose, created_at) VALUES (?, ?, ?, ?)`,
		userID, name, string(purpose), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet id: %w", err)
	}

	return &model.Wallet{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Purpose:   purpose,
		CreatedAt: now,
	}, nil
}

// GetWallets returns all of a user's wallets in creation order.
func (s *SQLiteStorage) GetWallets(ctx context.Context, userID int64) ([]model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, purpose, created_at FROM wallets WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var wallets []model.Wallet
	for rows.Next() {
		var w model.Wallet
		var purpose string
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &purpose, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		w.Purpose = model.WalletPurpose(purpose)
		wallets = append(wallets, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return wallets, nil
}

// GetWallet returns one wallet owned by the user.
func (s *SQLiteStorage) GetWallet(ctx context.Context, userID, walletID int64) (*model.Wallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var w model.Wallet
	var purpose string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, purpose, created_at FROM wallets WHERE id = ? AND user_id = ?`,
		walletID, userID,
	).Scan(&w.ID, &w.UserID, &w.Name, &purpose, &w.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wallet %d: %w", walletID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet: %w", err)
	}

	w.Purpose = model.WalletPurpose(purpose)
	return &w, nil
}

// GetWalletByName matches a wallet by name, case-insensitively. Returns
// (nil, nil) when no wallet matches; menu input failing to match is a
// validation condition, not a storage fault. The fold is done in Go so
// Vietnamese wallet names compare correctly.
func (s *SQLiteStorage) GetWalletByName(ctx context.Context, userID int64, name string) (*model.Wallet, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	wallets, err := s.GetWallets(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range wallets {
		if strings.EqualFold(wallets[i].Name, name) {
			return &wallets[i], nil
		}
	}
	return nil, nil
}

// EnsureDefaultWallets creates the four canonical 4-2-2-2 wallets the first
// time a user is seen with no wallets. Idempotent.
func (s *SQLiteStorage) EnsureDefaultWallets(ctx context.Context, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wallets WHERE user_id = ?`, userID,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to count wallets: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, dw := range model.DefaultWallets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wallets (user_id, name, purpose, created_at) VALUES (?, ?, ?, ?)`,
			userID, dw.Name, string(dw.Purpose), now,
		); err != nil {
			return fmt.Errorf("failed to create default wallet %q: %w", dw.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit default wallets: %w", err)
	}

	slog.Info("provisioned default wallets", "user_id", userID)
	return nil
}

// GetWalletBalance derives a wallet balance as the signed sum over its
// transactions. Never stored.
func (s *SQLiteStorage) GetWalletBalance(ctx context.Context, userID, walletID int64) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var balance float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = ? AND wallet_id = ?`,
		userID, walletID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to derive wallet balance: %w", err)
	}

	return balance, nil
}

// GetBalance derives the user's total balance over all transactions,
// including those not assigned to any wallet.
func (s *SQLiteStorage) GetBalance(ctx context.Context, userID int64) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var balance float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = ?`,
		userID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to derive balance: %w", err)
	}

	return balance, nil
}
