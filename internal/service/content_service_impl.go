package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/logger"
	"github.com/alexanderramin/studyplan/internal/repository"
)

const (
	DefaultFetchTimeout     = 10 * time.Second
	DefaultFetchConcurrency = 4

	emergencySource   = "Emergency Fallback Content"
	emergencyDuration = 30
)

// ContentConfig bounds catalog access.
type ContentConfig struct {
	FetchTimeout time.Duration
	Concurrency  int
}

type contentService struct {
	catalog  repository.ContentRepo
	fallback repository.FallbackContentSource
	uow      db.UnitOfWork
	cfg      ContentConfig
	log      *logger.Logger
	recorder Recorder
	observer UseCaseObserver
}

func NewContentService(
	catalog repository.ContentRepo,
	fallback repository.FallbackContentSource,
	uow db.UnitOfWork,
	cfg ContentConfig,
	log *logger.Logger,
	recorder Recorder,
	observers ...UseCaseObserver,
) ContentService {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultFetchConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &contentService{
		catalog:  catalog,
		fallback: fallback,
		uow:      uow,
		cfg:      cfg,
		log:      log.With("component", "content"),
		recorder: recorder,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *contentService) FetchForSubject(ctx context.Context, subject string, grade *int, count int) (SubjectContent, error) {
	return s.fetch(ctx, 0, subject, grade, count, nil)
}

// fetch walks the tiers for one subject. tier, when set, is told which
// tier was settled on before the result is returned.
func (s *contentService) fetch(ctx context.Context, index int, subject string, grade *int, count int, tier func(int, string, domain.ContentTier)) (SubjectContent, error) {
	settle := func(items []domain.ContentItem, t domain.ContentTier) (SubjectContent, error) {
		s.recorder.ContentTier(subject, t)
		if tier != nil {
			tier(index, subject, t)
		}
		return SubjectContent{Subject: subject, Items: items, Tier: t}, nil
	}

	if items := s.fetchPrimary(ctx, subject, grade, count); len(items) > 0 {
		return settle(items, domain.TierPrimary)
	}
	if err := ctx.Err(); err != nil {
		return SubjectContent{}, err
	}

	if s.fallback != nil {
		items, err := s.fallback.FetchFallback(ctx, subject)
		if err != nil {
			s.log.Warn("fallback content lookup failed", "subject", subject, "error", err)
		}
		if len(items) > 0 {
			if count > 0 && len(items) > count {
				items = items[:count]
			}
			s.log.Info("using fallback content", "subject", subject, "count", len(items))
			return settle(items, domain.TierFallback)
		}
	}
	if err := ctx.Err(); err != nil {
		return SubjectContent{}, err
	}

	s.log.Warn("no content available, synthesizing emergency item", "subject", subject)
	return settle([]domain.ContentItem{EmergencyContent(subject)}, domain.TierEmergency)
}

func (s *contentService) fetchPrimary(ctx context.Context, subject string, grade *int, count int) []domain.ContentItem {
	if s.catalog == nil {
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	items, err := s.catalog.Fetch(fetchCtx, subject, grade, count)
	if err != nil {
		s.log.Warn("primary content fetch failed", "subject", subject, "error", err)
		return nil
	}
	return items
}

// FetchAll fetches every subject in parallel, at most Concurrency at a
// time. Results are keyed by subject.
func (s *contentService) FetchAll(ctx context.Context, subjects []string, grade *int, count int, progress FetchProgress) (map[string]SubjectContent, error) {
	var mu sync.Mutex
	out := make(map[string]SubjectContent, len(subjects))
	done := 0

	serialTier := func(i int, subject string, t domain.ContentTier) {
		mu.Lock()
		defer mu.Unlock()
		if progress.Tier != nil {
			progress.Tier(i, subject, t)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, subject := range subjects {
		i, subject := i, subject
		g.Go(func() error {
			mu.Lock()
			if progress.Started != nil {
				progress.Started(i, subject)
			}
			mu.Unlock()

			sc, err := s.fetch(gctx, i, subject, grade, count, serialTier)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			out[subject] = sc
			done++
			if progress.Done != nil {
				progress.Done(done)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Import validates and upserts items in one transaction. Items without an
// id get one.
func (s *contentService) Import(ctx context.Context, items []domain.ContentItem) (n int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"items": len(items)}
	defer func() { observe(ctx, s.observer, "import-content", startedAt, fields, err) }()

	for i := range items {
		if err := normalizeContent(&items[i]); err != nil {
			return 0, domain.NewValidationError("import content", fmt.Sprintf("item %d: %v", i+1, err))
		}
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepo := repository.NewSQLiteContentRepo(tx)
		for i := range items {
			if err := txRepo.Upsert(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, domain.NewPersistenceError("import content", err)
	}
	return len(items), nil
}

func (s *contentService) List(ctx context.Context, subject string) ([]domain.ContentItem, error) {
	return s.catalog.ListBySubject(ctx, subject)
}

func (s *contentService) Counts(ctx context.Context) (map[string]int, error) {
	return s.catalog.CountBySubject(ctx)
}

func normalizeContent(c *domain.ContentItem) error {
	c.Title = strings.TrimSpace(c.Title)
	c.Subject = strings.TrimSpace(c.Subject)
	if c.Title == "" {
		return fmt.Errorf("title is required")
	}
	if c.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if strings.HasPrefix(c.ID, domain.EmergencyIDPrefix) {
		return fmt.Errorf("id prefix %q is reserved", domain.EmergencyIDPrefix)
	}
	if c.DurationMinutes < 0 {
		return fmt.Errorf("duration_minutes must not be negative")
	}
	c.ContentType = domain.ParseContentType(string(c.ContentType))
	c.DifficultyLevel = domain.ParseDifficulty(string(c.DifficultyLevel))
	return nil
}

// EmergencyContent synthesizes a generic resource for subject.
func EmergencyContent(subject string) domain.ContentItem {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(subject)), " ", "-")
	return domain.ContentItem{
		ID:              domain.EmergencyIDPrefix + uuid.New().String(),
		Title:           "Learning about " + subject,
		Description:     fmt.Sprintf("A general introduction to %s concepts", subject),
		Subject:         subject,
		ContentType:     domain.ContentArticle,
		DifficultyLevel: domain.DifficultyIntermediate,
		GradeLevels:     []int{7, 8, 9},
		URL:             "https://example.com/" + slug,
		DurationMinutes: emergencyDuration,
		Topics:          []string{subject},
		Keywords:        []string{subject},
		Source:          emergencySource,
	}
}
