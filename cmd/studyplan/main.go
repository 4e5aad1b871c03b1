package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/alexanderramin/studyplan/internal/cli"
	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
	"github.com/alexanderramin/studyplan/internal/generator"
	"github.com/alexanderramin/studyplan/internal/httpapi"
	"github.com/alexanderramin/studyplan/internal/jobs"
	"github.com/alexanderramin/studyplan/internal/llm"
	"github.com/alexanderramin/studyplan/internal/logger"
	"github.com/alexanderramin/studyplan/internal/metrics"
	"github.com/alexanderramin/studyplan/internal/planner"
	"github.com/alexanderramin/studyplan/internal/progress"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Config dir: env var or default ~/.studyplan
	configDir := os.Getenv("STUDYPLAN_CONFIG_DIR")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		configDir = filepath.Join(home, ".studyplan")
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire repositories
	planRepo := repository.NewSQLitePlanRepo(database)
	studentRepo := repository.NewSQLiteStudentProfileRepo(database)
	contentRepo := repository.NewSQLiteContentRepo(database)

	store, rdb, err := taskStore(ctx, cfg, database, uow)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	tracker := progress.NewTracker(store, log,
		progress.WithExpiry(cfg.Tasks.Expiry),
		progress.WithTerminalHook(m.TaskFinished),
	)
	go tracker.RunJanitor(ctx, cfg.Tasks.JanitorInterval)

	pool := jobs.NewPool(cfg.Worker.Concurrency, cfg.Worker.QueueSize, log, m)
	pool.Start(ctx)
	defer pool.Stop()

	sink, err := exportSink(ctx, cfg)
	if err != nil {
		return err
	}

	// Wire services
	observer := service.NewLogUseCaseObserver(log)
	contentSvc := service.NewContentService(contentRepo, repository.NewFallbackCatalog(), uow,
		service.ContentConfig{
			FetchTimeout: cfg.Planner.ContentFetchTimeout,
			Concurrency:  cfg.Planner.FetchConcurrency,
		}, log, m, observer)
	planSvc := service.NewPlanService(service.PlanDeps{
		Plans:     planRepo,
		Students:  studentRepo,
		Content:   contentSvc,
		Tracker:   tracker,
		Generator: draftGenerator(cfg, log, m),
		Queue:     pool,
		Sink:      sink,
		Log:       log,
	}, service.PlanConfig{
		DefaultDailyMinutes: cfg.Planner.DefaultDailyMinutes,
		MaxContentBalanced:  cfg.Planner.MaxContentBalanced,
		MaxContentFocused:   cfg.Planner.MaxContentFocused,
		ExportPrefix:        "plans",
	}, observer)
	activitySvc := service.NewActivityService(uow, m, observer)
	taskSvc := service.NewTaskService(tracker)
	studentSvc := service.NewStudentService(studentRepo)

	app := &cli.App{
		Students:   studentSvc,
		Plans:      planSvc,
		Activities: activitySvc,
		Tasks:      taskSvc,
		Content:    contentSvc,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	app.Serve = func(ctx context.Context) error {
		gin.SetMode(cfg.Server.Mode)
		if rs, ok := store.(*progress.RedisStore); ok {
			go func() {
				err := rs.Subscribe(ctx, func(t *domain.ProgressTask) {
					log.Debug("task_update", "task_id", t.ID, "status", string(t.Status), "progress", t.Progress)
				})
				if err != nil && ctx.Err() == nil {
					log.Warn("task update subscription ended", "error", err)
				}
			}()
		}
		router := httpapi.NewRouter(httpapi.RouterConfig{
			PlanHandler:    httpapi.NewPlanHandler(planSvc, activitySvc),
			TaskHandler:    httpapi.NewTaskHandler(taskSvc),
			StudentHandler: httpapi.NewStudentHandler(studentSvc),
			ContentHandler: httpapi.NewContentHandler(contentSvc),
			Metrics:        m,
			Log:            log,
			Health:         health(database, rdb),
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})
		return httpapi.NewServer(cfg.Server.Addr, router, log).Run(ctx)
	}

	root := cli.NewRootCmd(app)
	return root.ExecuteContext(ctx)
}

// taskStore picks redis when enabled, otherwise the sqlite task table.
func taskStore(ctx context.Context, cfg *config.Config, database *sql.DB, uow db.UnitOfWork) (progress.Store, *goredis.Client, error) {
	if !cfg.Redis.Enabled {
		return repository.NewSQLiteTaskStore(database, uow), nil, nil
	}
	rdb, err := progress.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	return progress.NewRedisStore(rdb, progress.RedisOptions{
		Prefix:  cfg.Redis.Prefix,
		Channel: cfg.Redis.Channel,
		TTL:     cfg.Tasks.Expiry,
	}), rdb, nil
}

func exportSink(ctx context.Context, cfg *config.Config) (export.Sink, error) {
	switch cfg.Storage.Type {
	case config.StorageLocal:
		return export.NewLocalSink(cfg.Storage.LocalPath), nil
	case config.StorageMinio:
		s, err := export.NewMinioSink(export.MinioConfig{
			Endpoint:  cfg.Storage.MinioEndpoint,
			AccessKey: cfg.Storage.MinioAccessKey,
			SecretKey: cfg.Storage.MinioSecretKey,
			Bucket:    cfg.Storage.MinioBucket,
			UseSSL:    cfg.Storage.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}

func draftGenerator(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) planner.DraftGenerator {
	if !cfg.LLM.Enabled {
		return generator.DeterministicGenerator{}
	}
	observers := llm.MultiObserver{m}
	if cfg.LLM.LogCalls {
		observers = append(observers, llm.NewLogObserver(log))
	}
	client := llm.NewOllamaClient(cfg.LLMSettings(), observers)
	return generator.NewLLMPlanGenerator(client, log)
}

func health(database *sql.DB, rdb *goredis.Client) httpapi.HealthFunc {
	return func(ctx context.Context) error {
		if err := database.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}
