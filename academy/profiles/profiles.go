package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"codeberg.org/algopatterns/academy/internal/errors"
	"codeberg.org/algopatterns/academy/internal/store"
)

// creates a new profile repository over the given table
func NewRepository(s store.Store, table string) *Repository {
	return &Repository{
		store: s,
		table: table,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// finds a profile by user ID, errors.ErrNotFound if none exists
func (r *Repository) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	body, err := r.store.Get(ctx, r.table, store.Key{Partition: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return decodeProfile(body)
}

// upserts the fields present in patch and refreshes updatedAt.
// the first write creates the record; fields absent from patch are never clobbered.
func (r *Repository) CreateOrUpdate(ctx context.Context, userID string, patch Patch) (*UserProfile, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	now := r.now()
	key := store.Key{Partition: userID}

	profile, err := r.update(ctx, key, patch, now)
	if err == nil || !errors.IsNotFound(err) {
		return profile, err
	}

	created := &UserProfile{ID: userID, CreatedAt: now, UpdatedAt: now}
	patch.apply(created)

	body, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	err = r.store.PutIfAbsent(ctx, r.table, key, body)
	if err == nil {
		return created, nil
	}

	// another session created the profile first, merge into theirs
	if errors.IsConditionFailed(err) {
		return r.update(ctx, key, patch, now)
	}

	return nil, fmt.Errorf("failed to create profile: %w", err)
}

func (r *Repository) update(ctx context.Context, key store.Key, patch Patch, now time.Time) (*UserProfile, error) {
	fields := patch.fields()
	fields["updatedAt"] = now

	body, err := r.store.Update(ctx, r.table, key, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return decodeProfile(body)
}

// rejects negative counters
func (p Patch) Validate() error {
	counters := map[string]*int{
		"modulesCompleted": p.ModulesCompleted,
		"lessonsCompleted": p.LessonsCompleted,
		"challengesSolved": p.ChallengesSolved,
		"streakDays":       p.StreakDays,
	}

	for name, value := range counters {
		if value != nil && *value < 0 {
			return fmt.Errorf("%s must not be negative: %w", name, errors.ErrValidation)
		}
	}

	return nil
}

// reports whether the patch carries no fields
func (p Patch) Empty() bool {
	return len(p.fields()) == 0
}

func (p Patch) fields() map[string]any {
	fields := make(map[string]any)

	if p.DisplayName != nil {
		fields["displayName"] = *p.DisplayName
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.ModulesCompleted != nil {
		fields["modulesCompleted"] = *p.ModulesCompleted
	}
	if p.LessonsCompleted != nil {
		fields["lessonsCompleted"] = *p.LessonsCompleted
	}
	if p.ChallengesSolved != nil {
		fields["challengesSolved"] = *p.ChallengesSolved
	}
	if p.StreakDays != nil {
		fields["streakDays"] = *p.StreakDays
	}

	return fields
}

func (p Patch) apply(profile *UserProfile) {
	if p.DisplayName != nil {
		profile.DisplayName = *p.DisplayName
	}
	if p.Email != nil {
		profile.Email = *p.Email
	}
	if p.ModulesCompleted != nil {
		profile.ModulesCompleted = *p.ModulesCompleted
	}
	if p.LessonsCompleted != nil {
		profile.LessonsCompleted = *p.LessonsCompleted
	}
	if p.ChallengesSolved != nil {
		profile.ChallengesSolved = *p.ChallengesSolved
	}
	if p.StreakDays != nil {
		profile.StreakDays = *p.StreakDays
	}
}

func decodeProfile(body []byte) (*UserProfile, error) {
	var profile UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return &profile, nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is empty: %w", errors.ErrValidation)
	}

	return nil
}
