package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
)

var (
	errInvalidBody         = errors.New("invalid request body")
	errMissingRefreshToken = errors.New("refresh token is missing")
)

const internalErrorMessage = "Internal Server Error"

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// statusFor maps a service error onto an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		return http.StatusBadRequest, vErrs.Error()
	}

	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrTokenInvalidOrExpired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrInvalidRefreshToken),
		errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, errMissingRefreshToken):
		return http.StatusUnauthorized, model.ErrInvalidRefreshToken.Error()
	case errors.Is(err, model.ErrEmailNotVerified),
		errors.Is(err, model.ErrTokenReuseDetected),
		errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

func handleError(c *gin.Context, logger *logger.Logger, err error) {
	code, message := statusFor(err)

	status := "fail"
	if code >= http.StatusInternalServerError {
		status = "error"
		logger.Error("HTTP handler: request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error())
	}

	c.AbortWithStatusJSON(code, errorResponse{Status: status, Message: message})
}
