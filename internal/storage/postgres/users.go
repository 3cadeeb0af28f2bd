// internal/storage/postgres/users.go
package postgres

import (
	"context"
	"fmt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, first_name, last_name,
	phone_number, location, bio, department, role, telegram_chat_id, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.PhoneNumber, &u.Location, &u.Bio, &u.Department, &u.Role,
		&u.TelegramChatID, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *domain.User) (int64, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name,
			phone_number, location, bio, department, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.PhoneNumber, u.Location, u.Bio, u.Department, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrEmailTaken
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return u.ID, nil
}

func (s *Storage) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *Storage) UserByTelegramChatID(ctx context.Context, chatID int64) (*domain.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_chat_id = $1`, chatID))
}

// UpdateProfile rewrites the mutable profile fields. Email and role are
// read-only through this path.
func (s *Storage) UpdateProfile(ctx context.Context, u *domain.User) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, phone_number = $3,
			location = $4, bio = $5, department = $6, telegram_chat_id = $7
		WHERE id = $8
	`, u.FirstName, u.LastName, u.PhoneNumber, u.Location, u.Bio,
		u.Department, u.TelegramChatID, u.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
