package model

import "github.com/google/uuid"

// AccessClaims are the identity facts carried by an access token.
type AccessClaims struct {
	UserID uuid.UUID
	Role   Role
}

// TokenManager generates and validates access/refresh tokens.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID, role Role) (string, error)
	GenerateRefreshToken(userID uuid.UUID, tokenID uuid.UUID) (string, error)
	ParseAccessToken(token string) (AccessClaims, error)
	ParseRefreshToken(token string) (userID uuid.UUID, tokenID uuid.UUID, err error)
}

// SessionResult is returned by login and refresh.
type SessionResult struct {
	User   PublicUser
	Tokens TokenPair
}
