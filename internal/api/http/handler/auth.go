package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
)

// AuthService defines the credential lifecycle operations exposed over HTTP.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.RegisterResult, error)
	Login(ctx context.Context, email, password string, meta model.ClientMeta) (model.SessionResult, error)
	Refresh(ctx context.Context, refreshToken string, meta model.ClientMeta) (model.SessionResult, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, rawToken string) (model.PublicUser, error)
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

const (
	msgVerificationSent   = "Registration successful. Please check your email to verify your account."
	msgLoginSuccess       = "Login successful"
	msgLogoutSuccess      = "Logged out successfully"
	msgRefreshSuccess     = "Token refreshed successfully"
	msgEmailVerified      = "Email verified successfully"
	msgVerificationResent = "If the account exists and is not yet verified, a new verification email has been sent."
	msgResetLinkSent      = "Reset link has been sent."
	msgPasswordReset      = "Password has been reset successfully"
)

type sessionResponse struct {
	Message     string           `json:"message,omitempty"`
	User        model.PublicUser `json:"user"`
	AccessToken string           `json:"accessToken"`
}

type pendingVerificationResponse struct {
	Message             string           `json:"message"`
	User                model.PublicUser `json:"user"`
	RequireVerification bool             `json:"requireVerification"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Auth handles HTTP endpoints for the credential lifecycle.
type Auth struct {
	authService         AuthService
	cookie              refreshCookie
	requireVerification bool
	logger              *logger.Logger
}

// NewAuth creates a new Auth handler. When requireVerification is set, plain
// registration behaves like registration with verification.
func NewAuth(authService AuthService, cookie CookieConfig, requireVerification bool, logger *logger.Logger) *Auth {
	return &Auth{
		authService:         authService,
		cookie:              refreshCookie{cfg: cookie},
		requireVerification: requireVerification,
		logger:              logger,
	}
}

// Register creates an account. Depending on configuration it either opens a
// session right away or waits for email verification.
func (h *Auth) Register(c *gin.Context) {
	h.register(c, h.requireVerification)
}

// RegisterWithVerification creates an unverified account and sends a
// verification link.
func (h *Auth) RegisterWithVerification(c *gin.Context) {
	h.register(c, true)
}

func (h *Auth) register(c *gin.Context, requireVerification bool) {
	var req registerRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	h.logger.Debug("Auth handler: processing registration request",
		"require_verification", requireVerification)

	result, err := h.authService.Register(c.Request.Context(), model.RegisterParams{
		Email:               req.Email,
		Password:            req.Password,
		Name:                trimName(req.Name),
		Meta:                clientMeta(c),
		RequireVerification: requireVerification,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", result.User.ID)

	if result.Tokens == nil {
		c.JSON(http.StatusCreated, pendingVerificationResponse{
			Message:             msgVerificationSent,
			User:                result.User,
			RequireVerification: true,
		})
		return
	}

	h.cookie.set(c, result.Tokens.RefreshToken)
	c.JSON(http.StatusCreated, sessionResponse{
		User:        result.User,
		AccessToken: result.Tokens.AccessToken,
	})
}

// Login exchanges credentials for a session.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.cookie.set(c, result.Tokens.RefreshToken)
	c.JSON(http.StatusOK, sessionResponse{
		Message:     msgLoginSuccess,
		User:        result.User,
		AccessToken: result.Tokens.AccessToken,
	})
}

// Logout revokes the session behind the refresh cookie. The cookie is cleared
// even when revocation fails.
func (h *Auth) Logout(c *gin.Context) {
	refreshToken := h.cookie.read(c)
	h.cookie.clear(c)

	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msgLogoutSuccess})
}

// Refresh rotates the refresh cookie and returns a new access token. Any
// failure clears the cookie.
func (h *Auth) Refresh(c *gin.Context) {
	refreshToken := h.cookie.read(c)
	if refreshToken == "" {
		h.cookie.clear(c)
		handleError(c, h.logger, errMissingRefreshToken)
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), refreshToken, clientMeta(c))
	if err != nil {
		h.cookie.clear(c)
		handleError(c, h.logger, err)
		return
	}

	h.cookie.set(c, result.Tokens.RefreshToken)
	c.JSON(http.StatusOK, sessionResponse{
		Message:     msgRefreshSuccess,
		User:        result.User,
		AccessToken: result.Tokens.AccessToken,
	})
}

// VerifyEmail redeems the token from the verification link.
func (h *Auth) VerifyEmail(c *gin.Context) {
	var q verifyEmailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handleError(c, h.logger, errInvalidBody)
		return
	}
	if err := q.Validate(); err != nil {
		handleError(c, h.logger, err)
		return
	}

	user, err := h.authService.VerifyEmail(c.Request.Context(), q.Token)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.logger.Info("Auth handler: email verified", "user_id", user.ID)

	c.JSON(http.StatusOK, messageResponse{Message: msgEmailVerified})
}

func (h *Auth) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msgVerificationResent})
}

// ForgotPassword answers identically whether or not the account exists.
func (h *Auth) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msgResetLinkSent})
}

func (h *Auth) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msgPasswordReset})
}

type validatable interface {
	Validate() error
}

// bindJSON decodes and validates the request body, writing the error
// response itself on failure.
func bindJSON(c *gin.Context, logger *logger.Logger, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		handleError(c, logger, errInvalidBody)
		return false
	}
	if err := req.Validate(); err != nil {
		handleError(c, logger, err)
		return false
	}
	return true
}

func clientMeta(c *gin.Context) model.ClientMeta {
	return model.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}
