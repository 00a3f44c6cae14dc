package achievements

import (
	"time"

	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/store"
)

// predicate over profile progress: metric >= AtLeast
type Criteria struct {
	Metric  string `yaml:"metric" json:"metric"`
	AtLeast int    `yaml:"atLeast" json:"atLeast"`
}

// how the front end presents an achievement
type Display struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
}

// one unlockable milestone of the static catalog
type Entry struct {
	ID       string   `yaml:"id" json:"id"`
	Criteria Criteria `yaml:"criteria" json:"criteria"`
	Display  Display  `yaml:"display" json:"display"`
}

// immutable set of entries, loaded once at startup
type Catalog struct {
	entries []Entry
}

// zero-or-one record per (user, achievement)
type UserAchievement struct {
	UserID        string    `json:"userId"`
	AchievementID string    `json:"achievementId"`
	AwardedAt     time.Time `json:"awardedAt"`
}

// evaluates progress against the catalog and records awards
type Service struct {
	store    store.Store
	table    string
	profiles *profiles.Repository
	catalog  *Catalog
	now      func() time.Time
}

type catalogFile struct {
	Achievements []Entry `yaml:"achievements"`
}
