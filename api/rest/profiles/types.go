package profiles

import "codeberg.org/algopatterns/academy/academy/profiles"

// UpdateProfileRequest carries the fields a learner may change; absent fields are kept
type UpdateProfileRequest struct {
	DisplayName      *string `json:"displayName" binding:"omitempty,max=100"`
	ModulesCompleted *int    `json:"modulesCompleted"`
	LessonsCompleted *int    `json:"lessonsCompleted"`
	ChallengesSolved *int    `json:"challengesSolved"`
	StreakDays       *int    `json:"streakDays"`
}

// ProfileResponse wraps a learner profile
type ProfileResponse struct {
	Profile *profiles.UserProfile `json:"profile"`
}

func (r UpdateProfileRequest) patch() profiles.Patch {
	return profiles.Patch{
		DisplayName:      r.DisplayName,
		ModulesCompleted: r.ModulesCompleted,
		LessonsCompleted: r.LessonsCompleted,
		ChallengesSolved: r.ChallengesSolved,
		StreakDays:       r.StreakDays,
	}
}
