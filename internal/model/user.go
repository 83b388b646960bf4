package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token lifetimes fixed by the account flows.
const (
	VerificationTokenTTL  = 24 * time.Hour
	PasswordResetTokenTTL = time.Hour
)

// Role is an account capability level.
type Role string

const (
	// RoleUser is a regular account.
	RoleUser Role = "user"
	// RoleAdmin can list accounts.
	RoleAdmin Role = "admin"
)

// UserStore defines persistence operations for accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) (User, error)
	SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	SetPasswordResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	// ConsumeVerificationToken marks the owner of an unexpired verification token
	// as verified and clears the token in a single statement.
	ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (User, error)
	// ConsumePasswordResetToken replaces the password of the owner of an unexpired
	// reset token and clears the token in a single statement.
	ConsumePasswordResetToken(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (User, error)
}

// User represents a stored account with its credential material.
type User struct {
	ID                          uuid.UUID
	Email                       string
	PasswordHash                string
	Name                        *string
	Role                        Role
	IsDeleted                   bool
	IsMailVerified              bool
	VerificationTokenHash       *string
	VerificationTokenExpiresAt  *time.Time
	PasswordResetTokenHash      *string
	PasswordResetTokenExpiresAt *time.Time
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// PublicUser is the sanitized view of an account returned to callers.
type PublicUser struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           *string   `json:"name"`
	Role           Role      `json:"role"`
	IsDeleted      bool      `json:"isDeleted"`
	IsMailVerified bool      `json:"isMailVerified"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Public strips password and token verifiers from the account.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		IsDeleted:      u.IsDeleted,
		IsMailVerified: u.IsMailVerified,
		CreatedAt:      u.CreatedAt,
	}
}

// RegisterParams is a validated registration request.
type RegisterParams struct {
	Email               string
	Password            string
	Name                *string
	Meta                ClientMeta
	RequireVerification bool
}

// RegisterResult carries the created account. Tokens is nil when the account
// has to verify its email first.
type RegisterResult struct {
	User   PublicUser
	Tokens *TokenPair
}
