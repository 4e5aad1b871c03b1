package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityCount(t *testing.T) {
	cases := []struct {
		subject, daily, want int
	}{
		{20, 60, 2},
		{30, 60, 4},
		{60, 60, 7},
		{90, 60, 7},
		{1, 60, 1},
		{10, 0, 1},
		{25, 70, 2},
		{15, 70, 2},
		{45, 70, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ActivityCount(tc.subject, tc.daily), "subject=%d daily=%d", tc.subject, tc.daily)
	}
}

func draftsOnDays(days ...int) []domain.ActivityDraft {
	out := make([]domain.ActivityDraft, len(days))
	for i, d := range days {
		out[i] = domain.ActivityDraft{Title: string(rune('a' + i)), Day: d}
	}
	return out
}

func titles(drafts []domain.ActivityDraft) string {
	var b strings.Builder
	for _, d := range drafts {
		b.WriteString(d.Title)
	}
	return b.String()
}

func TestSelectDrafts_PrefersDistinctDays(t *testing.T) {
	selected := SelectDrafts(draftsOnDays(1, 1, 2, 3, 3, 3), 3)
	require.Len(t, selected, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{selected[0].Day, selected[1].Day, selected[2].Day})
	assert.Equal(t, "acd", titles(selected))
}

func TestSelectDrafts_FillsFromRemainder(t *testing.T) {
	selected := SelectDrafts(draftsOnDays(1, 1, 1, 2), 3)
	assert.Equal(t, "adb", titles(selected))
}

func TestSelectDrafts_CountLimits(t *testing.T) {
	assert.Nil(t, SelectDrafts(draftsOnDays(1, 2), 0))
	assert.Len(t, SelectDrafts(draftsOnDays(1, 2), 5), 2)
}

func TestFreshPool(t *testing.T) {
	items := contentFor("Science", 5)
	used := NewUsedContent()
	assert.Len(t, FreshPool(items, used), 5)

	used.MarkUsed(items[0].ID)
	used.MarkUsed(items[1].ID)
	assert.Len(t, FreshPool(items, used), 3)

	used.MarkUsed(items[2].ID)
	assert.Len(t, FreshPool(items, used), 5, "fewer than three unused widens back to the full list")
}

func TestPickContent_CyclesBeforeReuse(t *testing.T) {
	items := contentFor("Art", 3)
	used := NewUsedContent()
	var got []string
	for i := 0; i < 7; i++ {
		c := pickContent(items, used)
		used.MarkUsed(c.ID)
		got = append(got, c.ID)
	}
	assert.Equal(t, []string{"Art-01", "Art-02", "Art-03", "Art-01", "Art-02", "Art-03", "Art-01"}, got)
}

func TestAssembleWeek_BuildsPrefixedActivities(t *testing.T) {
	gen := newStubGenerator(1, 1, 2, 3, 3, 3)
	items := contentFor("Mathematics", 4)
	used := NewUsedContent()

	acts, err := AssembleWeek(context.Background(), gen, WeekInput{
		Student:        testStudent(),
		Subject:        "Mathematics",
		Candidates:     items,
		SubjectMinutes: 26,
		DailyMinutes:   60,
		WeekIndex:      1,
	}, used)
	require.NoError(t, err)
	require.Len(t, acts, 3)

	for i, a := range acts {
		assert.True(t, strings.HasPrefix(a.Title, "Mathematics: "), a.Title)
		assert.Equal(t, i+1, a.Day)
		require.NotNil(t, a.ContentID)
		assert.Equal(t, items[i].ID, *a.ContentID)
		assert.Equal(t, items[i].URL, a.ContentURL)
		assert.Equal(t, domain.StatusNotStarted, a.Status)
		assert.Equal(t, 2, a.Metadata.Week)
		require.NotNil(t, a.Metadata.ContentInfo)
		assert.Equal(t, items[i].Title, a.Metadata.ContentInfo.Title)
		assert.Equal(t, []int{7, 8}, a.Metadata.ContentInfo.GradeLevels)
		assert.Contains(t, a.LearningBenefit, "Mathematics")
		assert.Contains(t, a.LearningBenefit, items[i].Title)
		assert.Equal(t, 15, a.DurationMinutes)
	}
	assert.Equal(t, 3, used.Len())
}

func TestAssembleWeek_DurationCappedAtSubjectMinutes(t *testing.T) {
	gen := newStubGenerator(1)
	acts, err := AssembleWeek(context.Background(), gen, WeekInput{
		Subject:        "Art",
		Candidates:     contentFor("Art", 1),
		SubjectMinutes: 10,
		DailyMinutes:   60,
	}, NewUsedContent())
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, 10, acts[0].DurationMinutes)
}

func TestAssembleWeek_KeepsKnownContentAndReassignsUnknown(t *testing.T) {
	items := contentFor("Science", 3)
	known := items[2].ID
	unknown := "not-in-catalog"
	gen := &fixedGenerator{drafts: []domain.ActivityDraft{
		{Title: "Known", Day: 1, ContentID: &known},
		{Title: "Unknown", Day: 2, ContentID: &unknown},
	}}
	used := NewUsedContent()

	acts, err := AssembleWeek(context.Background(), gen, WeekInput{
		Subject:        "Science",
		Candidates:     items,
		SubjectMinutes: 60,
		DailyMinutes:   60,
	}, used)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, known, *acts[0].ContentID)
	assert.Equal(t, items[0].ID, *acts[1].ContentID)
	assert.Equal(t, items[0].URL, acts[1].ContentURL)
	assert.True(t, used.IsUsed(known))
}

func TestAssembleWeek_GeneratorSeesFreshPool(t *testing.T) {
	gen := newStubGenerator(1)
	items := contentFor("English", 5)
	used := NewUsedContent()
	used.MarkUsed(items[0].ID)

	_, err := AssembleWeek(context.Background(), gen, WeekInput{
		Subject: "English", Candidates: items, SubjectMinutes: 20, DailyMinutes: 60,
	}, used)
	require.NoError(t, err)
	require.Len(t, gen.requests, 1)
	assert.Len(t, gen.requests[0].Candidates, 4)
	assert.Equal(t, 7, gen.requests[0].Days)
	assert.True(t, gen.requests[0].Weekly)
}

func TestAssembleWeek_GeneratorError(t *testing.T) {
	gen := newStubGenerator()
	gen.failFor["History"] = true
	_, err := AssembleWeek(context.Background(), gen, WeekInput{
		Subject: "History", Candidates: contentFor("History", 2), SubjectMinutes: 20, DailyMinutes: 60,
	}, NewUsedContent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "History week 1")
}

func TestAssembleWeek_NoCandidates(t *testing.T) {
	acts, err := AssembleWeek(context.Background(), newStubGenerator(), WeekInput{Subject: "Art"}, NewUsedContent())
	require.NoError(t, err)
	assert.Empty(t, acts)
}

type fixedGenerator struct {
	drafts []domain.ActivityDraft
}

func (g *fixedGenerator) Generate(context.Context, DraftRequest) ([]domain.ActivityDraft, error) {
	return g.drafts, nil
}
