package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/backoffice/internal/apperr"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

// RespondAppError maps any error to the envelope: typed errors keep their
// status and code, everything else degrades to a generic 500 so internals
// never leak to the client.
func RespondAppError(ctx *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		RespondError(ctx, appErr.Status, string(appErr.Code), appErr.Message, appErr.Details)
		return
	}

	slog.Default().ErrorContext(ctx.Request.Context(), "unhandled_error", "err", err)
	RespondError(ctx, http.StatusInternalServerError, string(apperr.CodeInternal), "Internal server error", nil)
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, string(apperr.CodeBadRequest), message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, string(apperr.CodeUnauthorized), message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, string(apperr.CodeNotFound), message, nil)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, string(apperr.CodeConflict), message, nil)
}

func RespondValidation(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusUnprocessableEntity, string(apperr.CodeValidation), message, details)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, string(apperr.CodeInternal), message, nil)
}
