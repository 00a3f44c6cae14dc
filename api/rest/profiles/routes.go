package profiles

import (
	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/auth"
	"github.com/gin-gonic/gin"
)

// registers the learner profile routes
func RegisterRoutes(router *gin.RouterGroup, repo *profiles.Repository, tokens *auth.Tokens) {
	profilesGroup := router.Group("/profiles")
	profilesGroup.Use(auth.AuthMiddleware(tokens))
	{
		profilesGroup.GET("/me", GetMyProfileHandler(repo))
		profilesGroup.PUT("/me", UpdateMyProfileHandler(repo))
	}
}
