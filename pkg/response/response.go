package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/lostfound/pkg/apperror"
	"anoa.com/lostfound/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	s, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ParamUUID parses a uuid path parameter, answering 400 when malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		ResponseError(c, apperror.NewValidation(name, "must be a valid id"))
		return uuid.Nil, false
	}
	return id, true
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		zap.L().Error("internal error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) && rateLimitErr.RetryAfter > 0 {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
	}

	var ve *apperror.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		c.JSON(code, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
