package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"messenger-service/internal/apperrors"
)

// respondError maps an error kind to its HTTP status with a {"error": ...} body.
func respondError(c *gin.Context, err error) {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "request_id", requestIDFromContext(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindAuth:
		status = http.StatusUnauthorized
	case apperrors.KindForbidden:
		status = http.StatusForbidden
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": apperrors.MessageOf(err)})
}

// respondBindError reports a request body that failed to bind or validate.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag()))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + strings.Join(fields, ", ")})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

func parseID(c *gin.Context, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label + " id"})
		return 0, false
	}
	return id, true
}

// actorID is the authenticated user set by middleware.AuthMiddleware.
func actorID(c *gin.Context) int64 {
	return c.GetInt64("userID")
}
