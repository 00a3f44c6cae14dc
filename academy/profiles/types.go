package profiles

import (
	"time"

	"codeberg.org/algopatterns/academy/internal/store"
)

// progress counters tracked per learner, inlined into the stored profile
type Progress struct {
	ModulesCompleted int `json:"modulesCompleted"`
	LessonsCompleted int `json:"lessonsCompleted"`
	ChallengesSolved int `json:"challengesSolved"`
	StreakDays       int `json:"streakDays"`
}

// one record per user, created lazily on first successful login
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Progress
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// partial update, nil fields are left untouched
type Patch struct {
	DisplayName      *string `json:"displayName,omitempty"`
	Email            *string `json:"email,omitempty"`
	ModulesCompleted *int    `json:"modulesCompleted,omitempty"`
	LessonsCompleted *int    `json:"lessonsCompleted,omitempty"`
	ChallengesSolved *int    `json:"challengesSolved,omitempty"`
	StreakDays       *int    `json:"streakDays,omitempty"`
}

// handles profile persistence on top of a document store
type Repository struct {
	store store.Store
	table string
	now   func() time.Time
}
