package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error     string `json:"error" example:"insufficient balance"`
	Reason    string `json:"reason" example:"insufficient_funds"`
	RequestID string `json:"requestID,omitempty"` // set on 5xx for support lookups
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperrors.IsRetryable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError logs err at a level matching its status and renders it. Internal
// failures never leak their message to the caller.
func writeError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	reason := apperrors.ReasonCode(err)

	body := errorResponse{Error: err.Error(), Reason: reason}
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()), slog.String("reason", reason))
		body.Error = msg
		body.RequestID = middleware.GetRequestID(c.Request.Context())
		if status == http.StatusServiceUnavailable {
			body.Error = "Service temporarily unavailable, retry later"
		}
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.String("reason", reason))
	}
	c.AbortWithStatusJSON(status, body)
}

// writeBindError reports a request that failed binding or validation.
func writeBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:  "Invalid request format: " + err.Error(),
		Reason: "validation_failed",
	})
}

// actorFrom returns the authenticated actor or aborts with 401.
func actorFrom(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Reason: "unauthorized"})
		return domain.Actor{}, false
	}
	return actor, true
}
