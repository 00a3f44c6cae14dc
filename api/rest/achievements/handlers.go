package achievements

import (
	"net/http"

	"codeberg.org/algopatterns/academy/academy/achievements"
	"codeberg.org/algopatterns/academy/api/rest/pagination"
	"codeberg.org/algopatterns/academy/internal/auth"
	"codeberg.org/algopatterns/academy/internal/errors"
	"github.com/gin-gonic/gin"
)

// ListCatalogHandler godoc
// @Summary List achievement catalog
// @Description Returns every achievement that can be unlocked, in catalog order
// @Tags achievements
// @Produce json
// @Success 200 {object} CatalogResponse
// @Router /api/v1/achievements [get]
func ListCatalogHandler(svc *achievements.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, CatalogResponse{Achievements: svc.Catalog().Entries()})
	}
}

// ListMyAchievementsHandler godoc
// @Summary List own achievements
// @Description Returns the learner's unlocked achievements ordered by award time
// @Tags achievements
// @Produce json
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} AwardsListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/profiles/me/achievements [get]
// @Security BearerAuth
func ListMyAchievementsHandler(svc *achievements.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		params, err := pagination.FromQuery(c)
		if err != nil {
			errors.BadRequest(c, "invalid pagination parameters", err)
			return
		}

		awards, err := svc.ListAchievements(c.Request.Context(), userID)
		if err != nil {
			errors.Respond(c, "achievements", err)
			return
		}

		page, meta := pagination.Page(awards, params)

		response := AwardsListResponse{
			Achievements: make([]AwardResponse, 0, len(page)),
			Pagination:   meta,
		}

		for _, award := range page {
			// awards outlive catalog edits, unknown ids keep empty display data
			entry, _ := svc.Catalog().Lookup(award.AchievementID)

			response.Achievements = append(response.Achievements, AwardResponse{
				AchievementID: award.AchievementID,
				AwardedAt:     award.AwardedAt,
				Display:       entry.Display,
			})
		}

		c.JSON(http.StatusOK, response)
	}
}

// EvaluateMyAchievementsHandler godoc
// @Summary Evaluate own achievements
// @Description Awards every achievement the learner now qualifies for and returns only the newly unlocked ids
// @Tags achievements
// @Produce json
// @Success 200 {object} EvaluateResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/profiles/me/achievements/evaluate [post]
// @Security BearerAuth
func EvaluateMyAchievementsHandler(svc *achievements.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		awarded, err := svc.EvaluateAndAward(c.Request.Context(), userID)
		if err != nil {
			errors.Respond(c, "profile", err)
			return
		}

		c.JSON(http.StatusOK, EvaluateResponse{Awarded: awarded})
	}
}
