package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
	"github.com/dtroode/authkeeper-server/internal/token"
)

// Auth is the credential lifecycle service. It is the only writer of
// accounts and session ledger rows.
type Auth struct {
	store        model.Store
	hasher       *PasswordHasher
	tokenService *TokenService
	notifier     model.Notifier
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	store model.Store,
	hasher *PasswordHasher,
	tokenService *TokenService,
	notifier model.Notifier,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		store:        store,
		hasher:       hasher,
		tokenService: tokenService,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.RegisterResult, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email,
		"require_verification", params.RequireVerification)

	_, err := a.store.Users().GetByEmail(ctx, params.Email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", params.Email)
		return model.RegisterResult{}, model.ErrConflict
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.RegisterResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	passwordHash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.RegisterResult{}, err
	}

	now := a.now()
	user := model.User{
		ID:             uuid.New(),
		Email:          params.Email,
		PasswordHash:   passwordHash,
		Name:           params.Name,
		Role:           model.RoleUser,
		IsMailVerified: !params.RequireVerification,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if params.RequireVerification {
		return a.registerPendingVerification(ctx, user)
	}

	var (
		created model.User
		pair    model.TokenPair
	)
	err = a.store.WithinTx(ctx, func(ctx context.Context, tx model.Store) error {
		var err error
		created, err = tx.Users().Create(ctx, user)
		if err != nil {
			return err
		}
		pair, _, err = a.tokenService.Issue(ctx, tx, created, params.Meta)
		return err
	})
	if errors.Is(err, model.ErrConflict) {
		return model.RegisterResult{}, model.ErrConflict
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.RegisterResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registration completed successfully",
		"user_id", created.ID)

	return model.RegisterResult{User: created.Public(), Tokens: &pair}, nil
}

func (a *Auth) registerPendingVerification(ctx context.Context, user model.User) (model.RegisterResult, error) {
	raw, err := token.NewRandom()
	if err != nil {
		return model.RegisterResult{}, err
	}
	hash := token.Hash(raw)
	expiresAt := a.now().Add(model.VerificationTokenTTL)
	user.VerificationTokenHash = &hash
	user.VerificationTokenExpiresAt = &expiresAt

	created, err := a.store.Users().Create(ctx, user)
	if errors.Is(err, model.ErrConflict) {
		return model.RegisterResult{}, model.ErrConflict
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", user.Email,
			"error", err.Error())
		return model.RegisterResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.notifier.SendVerification(ctx, created.Email, raw)

	a.logger.Info("Auth service: user registered, awaiting email verification",
		"user_id", created.ID)

	return model.RegisterResult{User: created.Public()}, nil
}

// Login checks credentials and opens a new session. Unknown accounts and wrong
// passwords are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email, password string, meta model.ClientMeta) (model.SessionResult, error) {
	a.logger.Debug("Auth service: starting user login",
		"email", email)

	user, err := a.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.hasher.CompareDummy(password)
		return model.SessionResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.SessionResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Compare(user.PasswordHash, password) {
		a.logger.Info("Auth service: login with wrong password",
			"user_id", user.ID)
		return model.SessionResult{}, model.ErrInvalidCredentials
	}

	if !user.IsMailVerified {
		return model.SessionResult{}, model.ErrEmailNotVerified
	}

	var pair model.TokenPair
	err = a.store.WithinTx(ctx, func(ctx context.Context, tx model.Store) error {
		var err error
		pair, _, err = a.tokenService.Issue(ctx, tx, user, meta)
		return err
	})
	if err != nil {
		return model.SessionResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login completed successfully",
		"user_id", user.ID)

	return model.SessionResult{User: user.Public(), Tokens: pair}, nil
}

func (a *Auth) Refresh(ctx context.Context, refreshToken string, meta model.ClientMeta) (model.SessionResult, error) {
	pair, user, err := a.tokenService.Rotate(ctx, a.store, refreshToken, meta)
	if err != nil {
		return model.SessionResult{}, err
	}

	a.logger.Debug("Auth service: session refreshed",
		"user_id", user.ID)

	return model.SessionResult{User: user.Public(), Tokens: pair}, nil
}

// Logout revokes the presented refresh token. It is idempotent.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	return a.tokenService.RevokeByToken(ctx, a.store, refreshToken)
}

func (a *Auth) VerifyEmail(ctx context.Context, rawToken string) (model.PublicUser, error) {
	if rawToken == "" {
		return model.PublicUser{}, model.ErrTokenInvalidOrExpired
	}

	user, err := a.store.Users().ConsumeVerificationToken(ctx, token.Hash(rawToken), a.now())
	if errors.Is(err, model.ErrNotFound) {
		return model.PublicUser{}, model.ErrTokenInvalidOrExpired
	}
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to verify email: %w", err)
	}

	a.logger.Info("Auth service: email verified",
		"user_id", user.ID)

	return user.Public(), nil
}

// ResendVerification issues a fresh verification token. Unknown and already
// verified accounts are ignored without telling the caller.
func (a *Auth) ResendVerification(ctx context.Context, email string) error {
	user, err := a.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Debug("Auth service: resend verification for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user.IsMailVerified {
		return nil
	}

	raw, err := token.NewRandom()
	if err != nil {
		return err
	}

	err = a.store.Users().SetVerificationToken(ctx, user.ID, token.Hash(raw), a.now().Add(model.VerificationTokenTTL))
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	a.notifier.SendVerification(ctx, user.Email, raw)
	return nil
}

// ForgotPassword starts a password reset. The result does not depend on
// whether the account exists.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	user, err := a.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Debug("Auth service: password reset for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	raw, err := token.NewRandom()
	if err != nil {
		return err
	}

	err = a.store.Users().SetPasswordResetToken(ctx, user.ID, token.Hash(raw), a.now().Add(model.PasswordResetTokenTTL))
	if err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}

	a.notifier.SendPasswordReset(ctx, user.Email, raw)

	a.logger.Info("Auth service: password reset requested",
		"user_id", user.ID)
	return nil
}

// ResetPassword redeems a reset token, replaces the password and revokes every
// session of the account.
func (a *Auth) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return model.ErrTokenInvalidOrExpired
	}

	passwordHash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	var (
		userID  uuid.UUID
		revoked int64
	)
	err = a.store.WithinTx(ctx, func(ctx context.Context, tx model.Store) error {
		user, err := tx.Users().ConsumePasswordResetToken(ctx, token.Hash(rawToken), passwordHash, a.now())
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrTokenInvalidOrExpired
		}
		if err != nil {
			return fmt.Errorf("failed to reset password: %w", err)
		}
		userID = user.ID

		revoked, err = a.tokenService.RevokeAllForUser(ctx, tx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Info("Auth service: password reset completed",
		"user_id", userID,
		"revoked_sessions", revoked)
	return nil
}

func (a *Auth) GetUser(ctx context.Context, id uuid.UUID) (model.PublicUser, error) {
	user, err := a.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.PublicUser{}, model.ErrNotFound
		}
		return model.PublicUser{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.Public(), nil
}

// ListUsers returns every active account. Only admins may call it.
func (a *Auth) ListUsers(ctx context.Context, requester model.AccessClaims) ([]model.PublicUser, error) {
	if requester.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	users, err := a.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	return public, nil
}

func (a *Auth) Authenticate(ctx context.Context, accessToken string) (model.AccessClaims, error) {
	return a.tokenService.Authenticate(accessToken)
}
