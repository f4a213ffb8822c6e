// Copyright 2026 The Tenauth Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tenauth/tenauth/internal/identity"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation. The (tenant_id, email) constraint turns a lost registration
// race into this code.
const uniqueViolation = "23505"

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (
			id, tenant_id, email, password_hash, role,
			first_name, last_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		user.ID, user.TenantID, user.Email, user.PasswordHash, user.Role,
		nullable(user.FirstName), nullable(user.LastName),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identity.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email within a tenant
func (r *UserRepository) GetByEmail(ctx context.Context, tenantID, email string) (*identity.User, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, password_hash, role,
			first_name, last_name, created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND email = $2
	`, tenantID, email))
}

// GetByID retrieves a user by ID within a tenant
func (r *UserRepository) GetByID(ctx context.Context, tenantID, userID string) (*identity.User, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, password_hash, role,
			first_name, last_name, created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, userID))
}

// List returns all users belonging to a tenant
func (r *UserRepository) List(ctx context.Context, tenantID string) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, email, password_hash, role,
			first_name, last_name, created_at, updated_at
		FROM users
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update persists mutable fields of an existing user. tenant_id and
// email are not in the SET list on purpose.
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET
			role = $3,
			first_name = $4,
			last_name = $5,
			updated_at = $6
		WHERE tenant_id = $1 AND id = $2
	`,
		user.TenantID, user.ID, user.Role,
		nullable(user.FirstName), nullable(user.LastName),
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

// Delete removes a user within a tenant
func (r *UserRepository) Delete(ctx context.Context, tenantID, userID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM users
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*identity.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*identity.User, error) {
	var user identity.User
	var firstName, lastName sql.NullString

	err := row.Scan(
		&user.ID, &user.TenantID, &user.Email, &user.PasswordHash, &user.Role,
		&firstName, &lastName, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.FirstName = firstName.String
	user.LastName = lastName.String

	return &user, nil
}
