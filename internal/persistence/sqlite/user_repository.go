package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new user. Emails are stored lowercased so the unique
// index is case-insensitive in practice.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, role, role_code, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		normalizeEmail(user.Email),
		user.FullName,
		user.PasswordHash,
		string(user.Role),
		user.RoleCode,
		user.IsActive,
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	return mapSQLError(err)
}

// UpdateUser updates an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, full_name = ?, password_hash = ?, role = ?, role_code = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		normalizeEmail(user.Email),
		user.FullName,
		user.PasswordHash,
		string(user.Role),
		user.RoleCode,
		user.IsActive,
		user.UpdatedAt.Format(time.RFC3339),
		user.ID,
	)
	if err != nil {
		return mapSQLError(err)
	}
	return requireRowAffected(result)
}

// GetUser retrieves a user by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, password_hash, role, role_code, is_active, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, password_hash, role, role_code, is_active, created_at, updated_at
		FROM users WHERE email = ?`, normalizeEmail(email))
	return scanUser(row)
}

// ListUsers returns a page of users ordered by creation time plus the total
// count.
func (r *UserRepository) ListUsers(ctx context.Context, page persistence.Page) ([]persistence.User, int, error) {
	page = page.Clamp()

	var count int
	if err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return nil, 0, mapSQLError(err)
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, email, full_name, password_hash, role, role_code, is_active, created_at, updated_at
		FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, mapSQLError(err)
	}
	defer rows.Close()

	users := make([]persistence.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapSQLError(err)
	}

	return users, count, nil
}

// DeleteUser removes a user by id.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapSQLError(err)
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user      persistence.User
		role      string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&role,
		&user.RoleCode,
		&user.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.User{}, mapSQLError(err)
	}

	user.Role = persistence.Role(role)
	user.CreatedAt = parseTimestamp(createdAt)
	user.UpdatedAt = parseTimestamp(updatedAt)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
