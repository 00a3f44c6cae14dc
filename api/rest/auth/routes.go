package auth

import (
	"codeberg.org/algopatterns/academy/internal/auth"
	"github.com/gin-gonic/gin"
)

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, d *Deps) {
	authGroup := router.Group("/auth")
	{
		// static routes first so they never match :provider
		authGroup.GET("/status", GetStatusHandler(d))
		authGroup.GET("/me", auth.AuthMiddleware(d.Tokens), GetCurrentUserHandler(d))
		authGroup.POST("/logout", LogoutHandler(d))

		authGroup.GET("/:provider", BeginAuthHandler(d))
		authGroup.GET("/:provider/callback", CallbackHandler(d))
	}
}
