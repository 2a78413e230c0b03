package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
)

// GetOrCreateUser returns the user for an external platform identity,
// creating it on first contact. Exactly one user exists per external id.
func (s *SQLiteStorage) GetOrCreateUser(ctx context.Context, externalID, fullName string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}

	user, err := s.GetUserByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (external_id, full_name, created_at) VALUES (?, ?, ?)`,
		externalID, fullName, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	slog.Info("created user", "user_id", id, "external_id", externalID)

	return &model.User{
		ID:         id,
		ExternalID: externalID,
		FullName:   fullName,
		CreatedAt:  now,
	}, nil
}

// GetUserByExternalID looks up a user by platform identity.
func (s *SQLiteStorage) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}

	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, external_id, full_name, created_at FROM users WHERE external_id = ?`,
		externalID,
	).Scan(&u.ID, &u.ExternalID, &u.FullName, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", externalID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}
