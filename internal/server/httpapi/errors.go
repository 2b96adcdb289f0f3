package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pixology/pixology-server/internal/errs"
)

// writeError maps domain sentinels to HTTP statuses. Unclassified errors are
// logged and answered with a generic message.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var (
		code int
		msg  string
	)
	switch {
	case errors.Is(err, errs.ErrValidation):
		code, msg = http.StatusBadRequest, errs.Reason(err, errs.ErrValidation)
	case errors.Is(err, errs.ErrUnauthorized):
		code, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errs.ErrForbidden):
		code, msg = http.StatusForbidden, "project belongs to another user"
	case errors.Is(err, errs.ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, errs.ErrConflict):
		code, msg = http.StatusConflict, strings.TrimSuffix(err.Error(), ": "+errs.ErrConflict.Error())
	case errors.Is(err, errs.ErrRateLimited):
		code, msg = http.StatusTooManyRequests, "too many failed attempts, try later"
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", routeOf(c)),
			zap.Error(err),
		)
		code, msg = http.StatusInternalServerError, "internal error"
	}
	c.JSON(code, gin.H{"error": msg})
}
