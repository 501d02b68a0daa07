package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gestao/internal/auth"
	"github.com/smallbiznis/gestao/internal/logger"
	"github.com/smallbiznis/gestao/internal/usercontext"
	"go.uber.org/zap"
)

const contextUserIDKey = "user_id"

// AuthRequired resolves the caller from the bearer token and scopes the
// request context to them.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.verifier.Verify(raw)
		if err != nil {
			logger.FromContext(c.Request.Context()).Debug("bearer token rejected", zap.Error(err))
			AbortWithError(c, err)
			return
		}

		ctx := usercontext.WithUserID(c.Request.Context(), identity.UserID)
		ctx = usercontext.WithAccessToken(ctx, raw)
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, identity.UserID)
		c.Next()
	}
}
