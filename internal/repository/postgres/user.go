package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper-server/internal/dbx"
	"github.com/dtroode/authkeeper-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, email, password_hash, name, role, is_deleted, is_mail_verified,
	verification_token_hash, verification_token_expires_at,
	password_reset_token_hash, password_reset_token_expires_at,
	created_at, updated_at`

type UserRepository struct {
	db dbx.DBTX
}

func NewUserRepository(db dbx.DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.IsDeleted, &user.IsMailVerified,
		&user.VerificationTokenHash, &user.VerificationTokenExpiresAt,
		&user.PasswordResetTokenHash, &user.PasswordResetTokenExpiresAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + `
			  FROM users WHERE email = $1 AND is_deleted = FALSE`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + `
			  FROM users WHERE id = $1 AND is_deleted = FALSE`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + `
			  FROM users WHERE is_deleted = FALSE ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, password_hash, name, role, is_mail_verified,
			  verification_token_hash, verification_token_expires_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + userColumns

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.IsMailVerified,
		user.VerificationTokenHash, user.VerificationTokenExpiresAt, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrConflict
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users
			  SET verification_token_hash = $2, verification_token_expires_at = $3, updated_at = NOW()
			  WHERE id = $1 AND is_deleted = FALSE`

	res, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set verification token: %w", err)
	}

	return requireAffected(res)
}

func (r *UserRepository) SetPasswordResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users
			  SET password_reset_token_hash = $2, password_reset_token_expires_at = $3, updated_at = NOW()
			  WHERE id = $1 AND is_deleted = FALSE`

	res, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set password reset token: %w", err)
	}

	return requireAffected(res)
}

func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error) {
	query := `UPDATE users
			  SET is_mail_verified = TRUE,
			      verification_token_hash = NULL,
			      verification_token_expires_at = NULL,
			      updated_at = NOW()
			  WHERE verification_token_hash = $1
			    AND verification_token_expires_at > $2
			    AND is_deleted = FALSE
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to consume verification token: %w", err)
	}

	return user, nil
}

func (r *UserRepository) ConsumePasswordResetToken(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (model.User, error) {
	query := `UPDATE users
			  SET password_hash = $2,
			      password_reset_token_hash = NULL,
			      password_reset_token_expires_at = NULL,
			      updated_at = NOW()
			  WHERE password_reset_token_hash = $1
			    AND password_reset_token_expires_at > $3
			    AND is_deleted = FALSE
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, tokenHash, passwordHash, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to consume password reset token: %w", err)
	}

	return user, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
