package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emberwell/api/config"
	"github.com/emberwell/api/utils"
)

// AdminRequired restricts a route to usernames listed in AdminUsernames.
// Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username := ctx.GetString(ContextUsernameKey)
		if username == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
			ctx.Abort()
			return
		}

		for _, admin := range config.Get().AdminUsernames {
			if admin == username {
				ctx.Next()
				return
			}
		}

		utils.Error(ctx, http.StatusForbidden, 40301, "admin privileges required")
		ctx.Abort()
	}
}
