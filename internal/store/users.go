// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/byceps/byceps-go/internal/model"
)

// UserStore provides access to the user directory.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts a directory entry.
func (s *UserStore) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, screen_name, avatar_url)
		VALUES (?, ?, ?)`,
		user.ID, user.ScreenName, user.AvatarURL)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// FindUser returns the user with that id. Returns sql.ErrNoRows if
// not found.
func (s *UserStore) FindUser(ctx context.Context, id model.UserID) (model.User, error) {
	var user model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, screen_name, avatar_url FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.ScreenName, &user.AvatarURL)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// GetUsersByIDs returns the users with the given ids, indexed by id.
// Unknown ids are simply absent from the result.
func (s *UserStore) GetUsersByIDs(ctx context.Context, ids []model.UserID) (map[model.UserID]model.User, error) {
	if len(ids) == 0 {
		return map[model.UserID]model.User{}, nil
	}

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, screen_name, avatar_url FROM users
		WHERE id IN (`+sqlPlaceholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	users := make(map[model.UserID]model.User, len(ids))
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.ScreenName, &user.AvatarURL); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}
