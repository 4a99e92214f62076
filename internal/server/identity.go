package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	headerUserID     = "X-User-Id"
	contextUserIDKey = "user_id"
)

// requireIdentity reads the caller identity the authenticating proxy
// injects. Requests without a parseable user id never reach a handler.
func (s *Server) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerUserID))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if _, err := snowflake.ParseString(raw); err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(contextUserIDKey, raw)
		c.Next()
	}
}

func (s *Server) userIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	raw, ok := value.(string)
	if !ok {
		return 0, false
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return userID, true
}
