package profiles

import (
	"net/http"

	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/auth"
	"codeberg.org/algopatterns/academy/internal/errors"
	"github.com/gin-gonic/gin"
)

// GetMyProfileHandler godoc
// @Summary Get own profile
// @Description Returns the authenticated learner's profile and progress counters
// @Tags profiles
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/profiles/me [get]
// @Security BearerAuth
func GetMyProfileHandler(repo *profiles.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		profile, err := repo.GetProfile(c.Request.Context(), userID)
		if err != nil {
			errors.Respond(c, "profile", err)
			return
		}

		c.JSON(http.StatusOK, ProfileResponse{Profile: profile})
	}
}

// UpdateMyProfileHandler godoc
// @Summary Update own profile
// @Description Upserts the given fields; fields left out of the body are not touched
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile update"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/profiles/me [put]
// @Security BearerAuth
func UpdateMyProfileHandler(repo *profiles.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		profile, err := repo.CreateOrUpdate(c.Request.Context(), userID, req.patch())
		if err != nil {
			errors.Respond(c, "profile", err)
			return
		}

		c.JSON(http.StatusOK, ProfileResponse{Profile: profile})
	}
}
