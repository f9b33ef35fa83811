package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"user_service/internal/auth"
	"user_service/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const ctxUserID = "UserID"

func AuthMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			newErrorResponse(c, http.StatusUnauthorized, "empty authorization header")

			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			newErrorResponse(c, http.StatusUnauthorized, "invalid authorization header")

			return
		}

		claims, err := tokens.ParseJWT(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Warn("jwt verify failed", slog.Any("error", err))

			newErrorResponse(c, http.StatusUnauthorized, "invalid token")

			return
		}

		c.Set(ctxUserID, claims.UserID)

		c.Next()
	}
}

// userIDFromContext returns the id AuthMiddleware stored for this request.
func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}

	id, ok := v.(uuid.UUID)
	return id, ok
}
