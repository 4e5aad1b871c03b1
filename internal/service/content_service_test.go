package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/testutil"
)

func newContentService(t *testing.T, catalog repository.ContentRepo, fallback repository.FallbackContentSource, cfg ContentConfig) (ContentService, *captureRecorder) {
	t.Helper()
	rec := &captureRecorder{}
	uow := testutil.NewTestUoW(testutil.NewTestDB(t))
	return NewContentService(catalog, fallback, uow, cfg, nil, rec), rec
}

func TestFetchForSubject_Tiers(t *testing.T) {
	primary := []domain.ContentItem{*testutil.NewTestContent("Mathematics", "Algebra I")}

	tests := []struct {
		name      string
		catalog   *stubCatalog
		fallback  repository.FallbackContentSource
		subject   string
		wantTier  domain.ContentTier
		wantCount int
	}{
		{"primary hit", &stubCatalog{items: primary}, repository.NewFallbackCatalog(), "Mathematics", domain.TierPrimary, 1},
		{"primary empty uses fallback", &stubCatalog{}, repository.NewFallbackCatalog(), "Science", domain.TierFallback, 2},
		{"primary error uses fallback", &stubCatalog{err: errors.New("db locked")}, repository.NewFallbackCatalog(), "Art", domain.TierFallback, 2},
		{"nothing anywhere", &stubCatalog{}, emptyFallback{}, "History", domain.TierEmergency, 1},
		{"unknown subject", &stubCatalog{}, repository.NewFallbackCatalog(), "Astrophysics", domain.TierEmergency, 1},
		{"no fallback source", &stubCatalog{}, nil, "Music", domain.TierEmergency, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, rec := newContentService(t, tt.catalog, tt.fallback, ContentConfig{})

			sc, err := svc.FetchForSubject(context.Background(), tt.subject, nil, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, sc.Subject)
			assert.Equal(t, tt.wantTier, sc.Tier)
			assert.Len(t, sc.Items, tt.wantCount)
			assert.Equal(t, tt.wantTier, rec.tier(tt.subject))
		})
	}
}

func TestFetchForSubject_PrimaryTimeoutFallsBack(t *testing.T) {
	catalog := &stubCatalog{delay: time.Second, items: []domain.ContentItem{{ID: "slow"}}}
	svc, _ := newContentService(t, catalog, repository.NewFallbackCatalog(), ContentConfig{FetchTimeout: 20 * time.Millisecond})

	start := time.Now()
	sc, err := svc.FetchForSubject(context.Background(), "English", nil, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.TierFallback, sc.Tier)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestFetchForSubject_CanceledContext(t *testing.T) {
	svc, _ := newContentService(t, &stubCatalog{}, emptyFallback{}, ContentConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.FetchForSubject(ctx, "History", nil, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchForSubject_FallbackCappedAtCount(t *testing.T) {
	svc, _ := newContentService(t, &stubCatalog{}, repository.NewFallbackCatalog(), ContentConfig{})

	sc, err := svc.FetchForSubject(context.Background(), "Mathematics", nil, 1)
	require.NoError(t, err)
	assert.Len(t, sc.Items, 1)
}

func TestEmergencyContent(t *testing.T) {
	c := EmergencyContent("Physical Education")

	assert.True(t, c.IsEmergency())
	assert.True(t, strings.HasPrefix(c.ID, "fallback-"))
	assert.Equal(t, "Learning about Physical Education", c.Title)
	assert.Equal(t, "A general introduction to Physical Education concepts", c.Description)
	assert.Equal(t, "https://example.com/physical-education", c.URL)
	assert.Equal(t, domain.ContentArticle, c.ContentType)
	assert.Equal(t, domain.DifficultyIntermediate, c.DifficultyLevel)
	assert.Equal(t, []int{7, 8, 9}, c.GradeLevels)
	assert.Equal(t, 30, c.DurationMinutes)
	assert.Equal(t, "Emergency Fallback Content", c.Source)

	assert.NotEqual(t, c.ID, EmergencyContent("Physical Education").ID)
}

func TestFetchAll_ParallelWithSerializedProgress(t *testing.T) {
	env := newTestEnv(t)
	env.addContent(t, testutil.NewTestContent("Mathematics", "Algebra"))
	subjects := []string{"Mathematics", "Science", "History", "Astrophysics"}

	var mu sync.Mutex
	inCallback := false
	var started []string
	var tiers []string
	var dones []int
	guard := func(fn func()) {
		mu.Lock()
		busy := inCallback
		inCallback = true
		mu.Unlock()
		assert.False(t, busy, "progress callbacks overlap")
		fn()
		mu.Lock()
		inCallback = false
		mu.Unlock()
	}

	out, err := env.content.FetchAll(context.Background(), subjects, nil, 10, FetchProgress{
		Started: func(i int, s string) { guard(func() { started = append(started, s) }) },
		Tier: func(i int, s string, tier domain.ContentTier) {
			guard(func() { tiers = append(tiers, fmt.Sprintf("%s=%s", s, tier)) })
		},
		Done: func(done int) { guard(func() { dones = append(dones, done) }) },
	})
	require.NoError(t, err)

	require.Len(t, out, 4)
	assert.Equal(t, domain.TierPrimary, out["Mathematics"].Tier)
	assert.Equal(t, domain.TierFallback, out["Science"].Tier)
	assert.Equal(t, domain.TierFallback, out["History"].Tier)
	assert.Equal(t, domain.TierEmergency, out["Astrophysics"].Tier)

	sort.Strings(started)
	assert.Equal(t, []string{"Astrophysics", "History", "Mathematics", "Science"}, started)
	assert.Len(t, tiers, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, dones)
}

func TestFetchAll_CanceledContext(t *testing.T) {
	svc, _ := newContentService(t, &stubCatalog{delay: time.Second}, emptyFallback{}, ContentConfig{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.FetchAll(ctx, []string{"Mathematics", "Science"}, nil, 5, FetchProgress{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	n, err := env.content.Import(ctx, []domain.ContentItem{
		{Title: " Photosynthesis ", Subject: "Science", ContentType: "VIDEO", DifficultyLevel: "Beginner"},
		{ID: "m-1", Title: "Ratios", Subject: "Mathematics", ContentType: "podcast"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	science, err := env.content.List(ctx, "science")
	require.NoError(t, err)
	require.Len(t, science, 1)
	assert.Equal(t, "Photosynthesis", science[0].Title)
	assert.NotEmpty(t, science[0].ID)
	assert.Equal(t, domain.ContentVideo, science[0].ContentType)
	assert.Equal(t, domain.DifficultyBeginner, science[0].DifficultyLevel)

	m, err := env.catalog.GetByID(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentOther, m.ContentType)

	counts, err := env.content.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["Science"])
	assert.Equal(t, 1, counts["Mathematics"])
}

func TestImport_InvalidItemWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.content.Import(ctx, []domain.ContentItem{
		{Title: "Fine", Subject: "Art"},
		{Title: "", Subject: "Art"},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "item 2")

	items, err := env.content.List(ctx, "Art")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestImport_RejectsReservedPrefix(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.content.Import(context.Background(), []domain.ContentItem{
		{ID: "fallback-123", Title: "X", Subject: "Art"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
