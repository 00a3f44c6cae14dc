package achievements

import (
	"codeberg.org/algopatterns/academy/academy/achievements"
	"codeberg.org/algopatterns/academy/internal/auth"
	"github.com/gin-gonic/gin"
)

// registers the catalog and the learner's achievement routes
func RegisterRoutes(router *gin.RouterGroup, svc *achievements.Service, tokens *auth.Tokens) {
	router.GET("/achievements", ListCatalogHandler(svc))

	mine := router.Group("/profiles/me/achievements")
	mine.Use(auth.AuthMiddleware(tokens))
	{
		mine.GET("", ListMyAchievementsHandler(svc))
		mine.POST("/evaluate", EvaluateMyAchievementsHandler(svc))
	}
}
