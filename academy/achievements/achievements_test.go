package achievements

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/errors"
	"codeberg.org/algopatterns/academy/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const (
	profilesTable     = "user_profiles"
	achievementsTable = "user_achievements"
)

func ptr[T any](v T) *T {
	return &v
}

type fixture struct {
	store    *store.MemoryStore
	profiles *profiles.Repository
	service  *Service
}

func newFixture(t *testing.T, entries ...Entry) *fixture {
	t.Helper()

	if len(entries) == 0 {
		entries = []Entry{
			{ID: "ten-modules", Criteria: Criteria{Metric: "modulesCompleted", AtLeast: 10}},
		}
	}

	catalog, err := NewCatalog(entries)
	require.NoError(t, err)

	s := store.NewMemoryStore()
	profileRepo := profiles.NewRepository(s, profilesTable)

	return &fixture{
		store:    s,
		profiles: profileRepo,
		service:  NewService(s, achievementsTable, profileRepo, catalog),
	}
}

func (f *fixture) withProgress(t *testing.T, userID string, patch profiles.Patch) {
	t.Helper()

	_, err := f.profiles.CreateOrUpdate(context.Background(), userID, patch)
	require.NoError(t, err)
}

func TestEvaluateAndAward_TenModulesExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withProgress(t, "google:1", profiles.Patch{ModulesCompleted: ptr(10)})

	first, err := f.service.EvaluateAndAward(ctx, "google:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ten-modules"}, first)

	second, err := f.service.EvaluateAndAward(ctx, "google:1")
	require.NoError(t, err)
	assert.Empty(t, second)

	awards, err := f.service.ListAchievements(ctx, "google:1")
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, "google:1", awards[0].UserID)
	assert.Equal(t, "ten-modules", awards[0].AchievementID)
}

func TestEvaluateAndAward_BelowThreshold(t *testing.T) {
	f := newFixture(t)
	f.withProgress(t, "google:1", profiles.Patch{ModulesCompleted: ptr(9)})

	awarded, err := f.service.EvaluateAndAward(context.Background(), "google:1")
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestEvaluateAndAward_OnlyReportsNewAwards(t *testing.T) {
	f := newFixture(t,
		Entry{ID: "first-module", Criteria: Criteria{Metric: "modulesCompleted", AtLeast: 1}},
		Entry{ID: "first-lesson", Criteria: Criteria{Metric: "lessonsCompleted", AtLeast: 1}},
		Entry{ID: "week-streak", Criteria: Criteria{Metric: "streakDays", AtLeast: 7}},
	)
	ctx := context.Background()

	f.withProgress(t, "github:2", profiles.Patch{ModulesCompleted: ptr(1)})
	awarded, err := f.service.EvaluateAndAward(ctx, "github:2")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-module"}, awarded)

	f.withProgress(t, "github:2", profiles.Patch{LessonsCompleted: ptr(3), StreakDays: ptr(7)})
	awarded, err = f.service.EvaluateAndAward(ctx, "github:2")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-lesson", "week-streak"}, awarded, "catalog order, first-module excluded")

	awards, err := f.service.ListAchievements(ctx, "github:2")
	require.NoError(t, err)
	assert.Len(t, awards, 3)
}

func TestEvaluateAndAward_IdempotentStoredSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withProgress(t, "google:1", profiles.Patch{ModulesCompleted: ptr(12)})

	_, err := f.service.EvaluateAndAward(ctx, "google:1")
	require.NoError(t, err)
	once, err := f.service.ListAchievements(ctx, "google:1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.service.EvaluateAndAward(ctx, "google:1")
		require.NoError(t, err)
	}

	many, err := f.service.ListAchievements(ctx, "google:1")
	require.NoError(t, err)
	assert.Equal(t, once, many)
}

func TestEvaluateAndAward_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withProgress(t, "google:1", profiles.Patch{ModulesCompleted: ptr(10)})

	const sessions = 24

	var mu sync.Mutex
	var results [][]string

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < sessions; i++ {
		g.Go(func() error {
			awarded, err := f.service.EvaluateAndAward(gctx, "google:1")
			if err != nil {
				return err
			}

			mu.Lock()
			results = append(results, awarded)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	occurrences := 0
	for _, awarded := range results {
		for _, id := range awarded {
			if id == "ten-modules" {
				occurrences++
			}
		}
	}
	assert.Equal(t, 1, occurrences, "exactly one session reports the new award")

	bodies, err := f.store.Query(ctx, achievementsTable, "google:1")
	require.NoError(t, err)
	assert.Len(t, bodies, 1, "exactly one stored record")
}

func TestEvaluateAndAward_ProfileNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.EvaluateAndAward(context.Background(), "google:ghost")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestEvaluateAndAward_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.withProgress(t, "google:1", profiles.Patch{ModulesCompleted: ptr(10)})
	require.NoError(t, f.store.Close())

	_, err := f.service.EvaluateAndAward(context.Background(), "google:1")
	assert.ErrorIs(t, err, errors.ErrStoreUnavailable)
}

func TestListAchievements_OrderedByAwardedAt(t *testing.T) {
	f := newFixture(t,
		Entry{ID: "a-first", Criteria: Criteria{Metric: "modulesCompleted", AtLeast: 1}},
		Entry{ID: "b-second", Criteria: Criteria{Metric: "lessonsCompleted", AtLeast: 1}},
		Entry{ID: "c-third", Criteria: Criteria{Metric: "challengesSolved", AtLeast: 1}},
	)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	patches := []profiles.Patch{
		{ModulesCompleted: ptr(1)},
		{LessonsCompleted: ptr(1)},
		{ChallengesSolved: ptr(1)},
	}

	// award in catalog order but with shuffled timestamps
	for i := range patches {
		at := times[i]
		f.service.now = func() time.Time { return at }
		f.withProgress(t, "google:1", patches[i])

		_, err := f.service.EvaluateAndAward(ctx, "google:1")
		require.NoError(t, err)
	}

	awards, err := f.service.ListAchievements(ctx, "google:1")
	require.NoError(t, err)
	require.Len(t, awards, 3)

	assert.Equal(t, "b-second", awards[0].AchievementID)
	assert.Equal(t, "c-third", awards[1].AchievementID)
	assert.Equal(t, "a-first", awards[2].AchievementID)
}

func TestListAchievements_EmptyUserID(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ListAchievements(context.Background(), "")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestListAchievements_NoneYet(t *testing.T) {
	f := newFixture(t)

	awards, err := f.service.ListAchievements(context.Background(), "google:1")
	require.NoError(t, err)
	assert.Empty(t, awards)
}
