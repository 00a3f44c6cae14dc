package achievements

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/errors"
	"codeberg.org/algopatterns/academy/internal/store"
)

// creates a new achievement service; awards live in table, keyed by (user, achievement)
func NewService(s store.Store, table string, profileRepo *profiles.Repository, catalog *Catalog) *Service {
	return &Service{
		store:    s,
		table:    table,
		profiles: profileRepo,
		catalog:  catalog,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// returns the static catalog
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// lists a user's awards ordered by award time, oldest first
func (s *Service) ListAchievements(ctx context.Context, userID string) ([]*UserAchievement, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is empty: %w", errors.ErrValidation)
	}

	bodies, err := s.store.Query(ctx, s.table, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	awards := make([]*UserAchievement, 0, len(bodies))
	for _, body := range bodies {
		var award UserAchievement
		if err := json.Unmarshal(body, &award); err != nil {
			return nil, fmt.Errorf("failed to decode achievement: %w", err)
		}

		awards = append(awards, &award)
	}

	slices.SortStableFunc(awards, func(a, b *UserAchievement) int {
		if c := a.AwardedAt.Compare(b.AwardedAt); c != 0 {
			return c
		}
		return strings.Compare(a.AchievementID, b.AchievementID)
	})

	return awards, nil
}

// awards every catalog entry the user now qualifies for and returns the ids this
// call created, in catalog order. safe to call redundantly and concurrently: the
// store's conditional insert decides the single winner for each (user, achievement).
func (s *Service) EvaluateAndAward(ctx context.Context, userID string) ([]string, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	awarded := make(map[string]bool, len(existing))
	for _, award := range existing {
		awarded[award.AchievementID] = true
	}

	newlyAwarded := []string{}
	now := s.now()

	for _, entry := range s.catalog.entries {
		if awarded[entry.ID] || !entry.Criteria.Met(profile.Progress) {
			continue
		}

		created, err := s.award(ctx, userID, entry.ID, now)
		if err != nil {
			return nil, err
		}

		if created {
			newlyAwarded = append(newlyAwarded, entry.ID)
		}
	}

	return newlyAwarded, nil
}

// conditionally inserts one award, false when a concurrent evaluation got there first
func (s *Service) award(ctx context.Context, userID, achievementID string, at time.Time) (bool, error) {
	body, err := json.Marshal(UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		AwardedAt:     at,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode achievement: %w", err)
	}

	err = s.store.PutIfAbsent(ctx, s.table, store.Key{Partition: userID, Sort: achievementID}, body)
	if errors.IsConditionFailed(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to award %s: %w", achievementID, err)
	}

	return true, nil
}
