package v1

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adanyl0v/taskflow/internal/auth"
)

const userIDCtxKey = "user_id"

// HandleAuthMiddleware resolves the acting user from the bearer
// token. Any failure short-circuits the request with 401: a refresh
// token, a malformed subject and a deleted account are all rejected
// the same way.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Warn().Msg("authorization header required")
		abort(c, newUnauthorizedError("authorization header required"))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Warn().Msg("invalid authorization header")
		abort(c, newUnauthorizedError("invalid authorization header"))
		return
	}

	claims, err := h.tokens.Decode(parts[1])
	if err != nil {
		h.logger.Warn().Msg("failed to decode access token")
		abort(c, newUnauthorizedError("invalid token"))
		return
	}

	if claims.TokenType != auth.TokenTypeAccess {
		h.logger.Warn().
			Str("type", claims.TokenType).
			Msg("wrong token type")
		abort(c, newUnauthorizedError("invalid token type"))
		return
	}

	if _, err = uuid.Parse(claims.Subject); err != nil {
		h.logger.Warn().Msg("invalid subject in token")
		abort(c, newUnauthorizedError("invalid token subject"))
		return
	}

	// Covers accounts deleted after the token was issued.
	user, err := h.users.GetUserByID(c, claims.Subject)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("user_id", claims.Subject).
			Msg("failed to resolve user from token")
		abort(c, newUnauthorizedError("user not found"))
		return
	}

	c.Set(userIDCtxKey, user.ID)
	c.Next()
}

func userIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(userIDCtxKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok
}
