package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/imagen-studio/internal/service"
)

// statusFor maps service sentinels to HTTP status codes and stable messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrAlreadyResolved):
		return http.StatusConflict, "credit request already resolved"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, service.ErrReviewExists):
		return http.StatusConflict, "you have already submitted a review"
	case errors.Is(err, service.ErrInsufficientCredits):
		return http.StatusPaymentRequired, "insufficient credits"
	case errors.Is(err, service.ErrProviderFailure):
		return http.StatusBadGateway, "image generation failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// validationMessage strips the sentinel prefix so clients see only the
// field problem.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, service.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(service.ErrValidation.Error())+2:]
	}
	return msg
}

func writeError(c echo.Context, logger *slog.Logger, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "status", status, "error", err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func parseIDParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
