package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ritujaab/workout-planner/internal/service"
)

// Constants for context keys
const (
	ContextUserIDKey = "userID"
)

// AuthMiddleware requires a valid "Bearer <token>" header and stores the
// user id (hex) in the context for the handlers.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization token required")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		userID, err := authService.ParseToken(parts[1])
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("rejected bearer token")
			abortWithError(c, http.StatusUnauthorized, "Request is not authorized")
			return
		}

		c.Set(ContextUserIDKey, userID.Hex())
		l := LoggerFrom(c).With().Str("user_id", userID.Hex()).Logger()
		setLogger(c, &l)

		c.Next()
	}
}

// getUserIDFromContext returns the id AuthMiddleware stored.
func getUserIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idStr := c.GetString(ContextUserIDKey)
	if idStr == "" {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	return primitive.ObjectIDFromHex(idStr)
}
