package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore is the session ledger. Rows are never deleted.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	SetTokenHash(ctx context.Context, id uuid.UUID, tokenHash string) error
	// GetByIDForUpdate loads a ledger row and locks it until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (RefreshToken, error)
	// MarkReplaced revokes an active row and links it to its successor.
	// Returns ErrNotFound when the row is missing or already revoked.
	MarkReplaced(ctx context.Context, id uuid.UUID, replacedBy uuid.UUID) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) (int64, error)
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// RefreshToken is one issuance of a refresh credential.
type RefreshToken struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TokenHash  string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Revoked    bool
	UserAgent  string
	IPAddress  string
	ReplacedBy *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ClientMeta is request metadata recorded on ledger rows for audit.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// TokenPair is the result of session issuance.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
