package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper-server/internal/dbx"
	"github.com/dtroode/authkeeper-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db dbx.DBTX
}

func NewRefreshTokenRepository(db dbx.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (
            id, user_id, token_hash, issued_at, expires_at, revoked, user_agent, ip_address, replaced_by, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.IssuedAt, token.ExpiresAt,
		token.Revoked, token.UserAgent, token.IPAddress, token.ReplacedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) SetTokenHash(ctx context.Context, id uuid.UUID, tokenHash string) error {
	const query = `
        UPDATE refresh_tokens SET token_hash = $2, updated_at = NOW()
        WHERE id = $1
    `
	res, err := r.db.ExecContext(ctx, query, id, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to set refresh token hash: %w", err)
	}
	return requireAffected(res)
}

func (r *RefreshTokenRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.RefreshToken, error) {
	const query = `
        SELECT id, user_id, token_hash, issued_at, expires_at, revoked, user_agent, ip_address, replaced_by, created_at, updated_at
        FROM refresh_tokens WHERE id = $1 FOR UPDATE
    `
	var rt model.RefreshToken
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rt.ID, &rt.UserID, &rt.TokenHash, &rt.IssuedAt, &rt.ExpiresAt, &rt.Revoked,
		&rt.UserAgent, &rt.IPAddress, &rt.ReplacedBy, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by id: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) MarkReplaced(ctx context.Context, id uuid.UUID, replacedBy uuid.UUID) error {
	const query = `
        UPDATE refresh_tokens SET revoked = TRUE, replaced_by = $2, updated_at = NOW()
        WHERE id = $1 AND revoked = FALSE
    `
	res, err := r.db.ExecContext(ctx, query, id, replacedBy)
	if err != nil {
		return fmt.Errorf("failed to mark refresh token replaced: %w", err)
	}
	return requireAffected(res)
}

func (r *RefreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	const query = `
        UPDATE refresh_tokens SET revoked = TRUE, updated_at = NOW()
        WHERE token_hash = $1 AND revoked = FALSE
    `
	res, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `
        UPDATE refresh_tokens SET revoked = TRUE, updated_at = NOW()
        WHERE user_id = $1 AND revoked = FALSE
    `
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
