package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
	"github.com/dtroode/authkeeper-server/internal/token"
)

// TokenService issues, rotates and revokes sessions. Every method takes the
// store it must write through so that callers decide the transaction.
type TokenService struct {
	manager    model.TokenManager
	refreshTTL time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

func NewTokenService(manager model.TokenManager, refreshTTL time.Duration, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, refreshTTL: refreshTTL, logger: logger, now: time.Now}
}

// Issue creates a ledger row, signs a token pair bound to it and stores the
// refresh token verifier on the row. tx should be transactional.
func (s *TokenService) Issue(ctx context.Context, tx model.Store, user model.User, meta model.ClientMeta) (model.TokenPair, uuid.UUID, error) {
	now := s.now()
	row := model.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
	}

	if err := tx.RefreshTokens().Create(ctx, row); err != nil {
		return model.TokenPair{}, uuid.Nil, fmt.Errorf("persist refresh: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(user.ID, row.ID)
	if err != nil {
		return model.TokenPair{}, uuid.Nil, fmt.Errorf("issue refresh: %w", err)
	}

	access, err := s.manager.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return model.TokenPair{}, uuid.Nil, fmt.Errorf("issue access: %w", err)
	}

	if err := tx.RefreshTokens().SetTokenHash(ctx, row.ID, token.Hash(refresh)); err != nil {
		return model.TokenPair{}, uuid.Nil, fmt.Errorf("persist refresh hash: %w", err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, row.ID, nil
}

// Rotate exchanges a refresh token for a new pair. Presenting a token that was
// already revoked revokes every session of its owner and fails with
// model.ErrTokenReuseDetected.
func (s *TokenService) Rotate(ctx context.Context, store model.Store, presented string, meta model.ClientMeta) (model.TokenPair, model.User, error) {
	userID, tokenID, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		s.logger.Debug("Token service: refresh token rejected", "error", err.Error())
		return model.TokenPair{}, model.User{}, model.ErrInvalidRefreshToken
	}

	var (
		pair   model.TokenPair
		user   model.User
		reused bool
	)

	err = store.WithinTx(ctx, func(ctx context.Context, tx model.Store) error {
		row, err := tx.RefreshTokens().GetByIDForUpdate(ctx, tokenID)
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrInvalidRefreshToken
		}
		if err != nil {
			return fmt.Errorf("failed to load refresh token: %w", err)
		}

		if row.UserID != userID || !equalHash(row.TokenHash, token.Hash(presented)) {
			return model.ErrInvalidRefreshToken
		}

		if row.Revoked {
			n, err := tx.RefreshTokens().RevokeAllByUser(ctx, row.UserID)
			if err != nil {
				return fmt.Errorf("failed to revoke sessions: %w", err)
			}
			s.logger.Warn("Token service: refresh token reuse detected, all sessions revoked",
				"user_id", row.UserID,
				"token_id", row.ID,
				"revoked", n)
			reused = true
			return nil
		}

		if !s.now().Before(row.ExpiresAt) {
			return model.ErrInvalidRefreshToken
		}

		user, err = tx.Users().GetByID(ctx, row.UserID)
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrInvalidRefreshToken
		}
		if err != nil {
			return fmt.Errorf("failed to get user by id: %w", err)
		}

		var nextID uuid.UUID
		pair, nextID, err = s.Issue(ctx, tx, user, meta)
		if err != nil {
			return err
		}

		err = tx.RefreshTokens().MarkReplaced(ctx, row.ID, nextID)
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrInvalidRefreshToken
		}
		if err != nil {
			return fmt.Errorf("revoke old refresh: %w", err)
		}

		return nil
	})
	if err != nil {
		return model.TokenPair{}, model.User{}, err
	}
	if reused {
		return model.TokenPair{}, model.User{}, model.ErrTokenReuseDetected
	}

	return pair, user, nil
}

// RevokeByToken revokes every ledger row holding the presented refresh token.
// Unknown and already revoked tokens are not an error.
func (s *TokenService) RevokeByToken(ctx context.Context, store model.Store, presented string) error {
	if presented == "" {
		return nil
	}

	n, err := store.RefreshTokens().RevokeByTokenHash(ctx, token.Hash(presented))
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	s.logger.Debug("Token service: refresh token revoked", "revoked", n)
	return nil
}

func (s *TokenService) RevokeAllForUser(ctx context.Context, store model.Store, userID uuid.UUID) (int64, error) {
	return store.RefreshTokens().RevokeAllByUser(ctx, userID)
}

// Authenticate validates an access token.
func (s *TokenService) Authenticate(accessToken string) (model.AccessClaims, error) {
	claims, err := s.manager.ParseAccessToken(accessToken)
	if err != nil {
		return model.AccessClaims{}, model.ErrUnauthorized
	}
	return claims, nil
}

func equalHash(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
