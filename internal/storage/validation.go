package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hxngan/vitien/internal/model"
)

// Validation errors returned before any statement is executed.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string cannot be empty")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidDirection = errors.New("invalid transaction direction")
	ErrInvalidID        = errors.New("id must be positive")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s, name string) error {
	if s == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, name)
	}
	return nil
}

func validateID(id int64, name string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, name)
	}
	return nil
}

func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return errors.New("transaction cannot be nil")
	}
	if !txn.Direction.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, txn.Direction)
	}
	if txn.Amount <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidAmount, txn.Amount)
	}
	if err := validateID(txn.UserID, "userID"); err != nil {
		return err
	}
	return validateString(txn.Category, "category")
}

func validateGoalTransaction(gt *model.GoalTransaction) error {
	if gt == nil {
		return errors.New("goal transaction cannot be nil")
	}
	if gt.Type != model.GoalDeposit && gt.Type != model.GoalWithdraw {
		return fmt.Errorf("invalid goal transaction type: %q", gt.Type)
	}
	if gt.Amount <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidAmount, gt.Amount)
	}
	return validateID(gt.GoalID, "goalID")
}
