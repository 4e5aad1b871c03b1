package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/llm"
	"github.com/alexanderramin/studyplan/internal/logger"
	"github.com/alexanderramin/studyplan/internal/planner"
)

// LLMPlanGenerator asks a language model for a week of activities and
// repairs whatever it returns into usable drafts.
type LLMPlanGenerator struct {
	client llm.LLMClient
	log    *logger.Logger
}

var _ planner.DraftGenerator = (*LLMPlanGenerator)(nil)

func NewLLMPlanGenerator(client llm.LLMClient, log *logger.Logger) *LLMPlanGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &LLMPlanGenerator{client: client, log: log.With("component", "generator")}
}

// weeklyResponse is the JSON shape the prompt asks for.
type weeklyResponse struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Subject     string        `json:"subject"`
	Topics      []string      `json:"topics"`
	Activities  []rawActivity `json:"activities"`
}

type rawActivity struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	ContentID       looseString `json:"content_id"`
	ContentURL      string      `json:"content_url"`
	DurationMinutes *float64    `json:"duration_minutes"`
	Day             *float64    `json:"day"`
	Order           *float64    `json:"order"`
	LearningBenefit string      `json:"learning_benefit"`
}

// looseString accepts a JSON string, number or null.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(v))
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("content_id: unexpected value %s", raw)
	}
	*s = looseString(raw)
	return nil
}

func (g *LLMPlanGenerator) Generate(ctx context.Context, req planner.DraftRequest) ([]domain.ActivityDraft, error) {
	days := weekDays(req)
	resp, err := g.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskWeeklyPlan,
		SystemPrompt: systemPrompt,
		UserPrompt:   buildPrompt(req, days),
		JSONOutput:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("weekly plan for %s: %w", req.Subject, err)
	}

	parsed, err := llm.ExtractJSON[weeklyResponse](resp.Text, nil)
	if err != nil {
		return nil, fmt.Errorf("weekly plan for %s: %w", req.Subject, err)
	}

	drafts := normalize(req.Subject, parsed.Activities, req.Candidates, days)
	if missing := len(drafts) - len(parsed.Activities); missing > 0 {
		g.log.Warn("model left days without activities",
			"subject", req.Subject,
			"week", req.WeekIndex+1,
			"added", missing,
		)
	}
	return drafts, nil
}

// normalize turns raw model output into drafts: days are clamped to
// 1..days, order defaults to 1, unknown or missing content ids fall back to
// the first candidate, duration defaults to the content's or 20 minutes,
// and every day without an activity gets a stand-in draft.
func normalize(subject string, raw []rawActivity, candidates []domain.ContentItem, days int) []domain.ActivityDraft {
	byID := make(map[string]domain.ContentItem, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	drafts := make([]domain.ActivityDraft, 0, len(raw)+days)
	covered := make(map[int]bool, days)
	for _, r := range raw {
		d := domain.ActivityDraft{
			Title:       strings.TrimSpace(r.Title),
			Description: strings.TrimSpace(r.Description),
			Day:         clampInt(roundOr(r.Day, 1), 1, days),
			Order:       roundOr(r.Order, 1),
			ContentURL:  strings.TrimSpace(r.ContentURL),
		}
		if d.Order < 1 {
			d.Order = 1
		}

		var matched *domain.ContentItem
		if c, ok := byID[string(r.ContentID)]; ok {
			matched = &c
		} else if len(candidates) > 0 {
			c := candidates[0]
			matched = &c
			d.ContentURL = c.URL
		}
		if matched != nil {
			id := matched.ID
			d.ContentID = &id
			if d.ContentURL == "" {
				d.ContentURL = matched.URL
			}
		}

		duration := roundOr(r.DurationMinutes, 0)
		if duration <= 0 && matched != nil {
			duration = matched.DurationMinutes
		}
		d.DurationMinutes = durationOr(duration, defaultDurationMinutes)

		d.LearningBenefit = strings.TrimSpace(r.LearningBenefit)
		if d.LearningBenefit == "" {
			d.LearningBenefit = fmt.Sprintf("This activity helps build skills in %s and supports the student's learning journey for day %d.", subject, d.Day)
		}

		covered[d.Day] = true
		drafts = append(drafts, d)
	}

	if len(candidates) == 0 {
		return drafts
	}
	for day := 1; day <= days; day++ {
		if !covered[day] {
			drafts = append(drafts, dayDraft(subject, day, candidates))
		}
	}
	return drafts
}

func roundOr(v *float64, fallback int) int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return int(math.Round(*v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
