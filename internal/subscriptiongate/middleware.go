package subscriptiongate

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gestao/internal/usercontext"
)

// Require blocks callers whose subscription is known to be inactive. Errors
// are pushed to the gin context for the server's error middleware to render.
func (g *Gate) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID, ok := usercontext.UserIDFromContext(ctx)
		if !ok {
			c.Next()
			return
		}
		token := usercontext.AccessTokenFromContext(ctx)

		if err := g.Authorize(ctx, userID, token); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
