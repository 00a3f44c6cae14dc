package achievements

import (
	"time"

	"codeberg.org/algopatterns/academy/academy/achievements"
	"codeberg.org/algopatterns/academy/api/rest/pagination"
)

// CatalogResponse lists every unlockable achievement
type CatalogResponse struct {
	Achievements []achievements.Entry `json:"achievements"`
}

// AwardResponse is one unlocked achievement with its display metadata
type AwardResponse struct {
	AchievementID string               `json:"achievementId"`
	AwardedAt     time.Time            `json:"awardedAt"`
	Display       achievements.Display `json:"display"`
}

// AwardsListResponse is a page of the learner's awards, oldest first
type AwardsListResponse struct {
	Achievements []AwardResponse `json:"achievements"`
	Pagination   pagination.Meta `json:"pagination"`
}

// EvaluateResponse lists the ids unlocked by this evaluation only
type EvaluateResponse struct {
	Awarded []string `json:"awarded"`
}
