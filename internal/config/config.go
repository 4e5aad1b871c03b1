// Package config loads settings from an optional config.yaml and
// STUDYPLAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alexanderramin/studyplan/internal/llm"
	"github.com/alexanderramin/studyplan/internal/logger"
)

const EnvPrefix = "STUDYPLAN"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type PlannerConfig struct {
	DefaultDailyMinutes int           `mapstructure:"default_daily_minutes"`
	ContentFetchTimeout time.Duration `mapstructure:"content_fetch_timeout"`
	FetchConcurrency    int           `mapstructure:"fetch_concurrency"`
	MaxContentBalanced  int           `mapstructure:"max_content_balanced"`
	MaxContentFocused   int           `mapstructure:"max_content_focused"`
}

type LLMConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Endpoint   string `mapstructure:"endpoint"`
	Model      string `mapstructure:"model"`
	TimeoutMs  int    `mapstructure:"timeout_ms"`
	MaxRetries int    `mapstructure:"max_retries"`
	LogCalls   bool   `mapstructure:"log_calls"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	QueueSize   int `mapstructure:"queue_size"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	Channel  string `mapstructure:"channel"`
}

type StorageConfig struct {
	Type           string `mapstructure:"type"`
	LocalPath      string `mapstructure:"local_path"`
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
}

type TasksConfig struct {
	Expiry          time.Duration `mapstructure:"expiry"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
}

// Storage types.
const (
	StorageNone  = "none"
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Default returns a working local setup: sqlite under ~/.studyplan, no
// LLM, no redis, exports kept on disk.
func Default() Config {
	home := dataDir()
	llmDefaults := llm.DefaultConfig()
	return Config{
		Server:   ServerConfig{Addr: ":8080", Mode: "release", AllowedOrigins: []string{"*"}},
		Database: DatabaseConfig{Path: filepath.Join(home, "studyplan.db")},
		Log:      LogConfig{Level: "info"},
		Planner: PlannerConfig{
			DefaultDailyMinutes: 60,
			ContentFetchTimeout: 10 * time.Second,
			FetchConcurrency:    4,
			MaxContentBalanced:  30,
			MaxContentFocused:   40,
		},
		LLM: LLMConfig{
			Enabled:    false,
			Endpoint:   llmDefaults.Endpoint,
			Model:      llmDefaults.Model,
			TimeoutMs:  llmDefaults.TimeoutMs,
			MaxRetries: llmDefaults.MaxRetries,
		},
		Worker: WorkerConfig{Concurrency: 2, QueueSize: 64},
		Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "studyplan", Channel: "studyplan:task-updates"},
		Storage: StorageConfig{
			Type:        StorageLocal,
			LocalPath:   filepath.Join(home, "exports"),
			MinioBucket: "studyplan-exports",
		},
		Tasks: TasksConfig{Expiry: 30 * time.Minute, JanitorInterval: 5 * time.Minute},
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studyplan"
	}
	return filepath.Join(home, ".studyplan")
}

// Load reads config.yaml from dir when present, then applies STUDYPLAN_*
// environment overrides, e.g. STUDYPLAN_SERVER_ADDR or
// STUDYPLAN_LLM_ENABLED. An empty dir skips the file.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir != "" {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("planner.default_daily_minutes", d.Planner.DefaultDailyMinutes)
	v.SetDefault("planner.content_fetch_timeout", d.Planner.ContentFetchTimeout)
	v.SetDefault("planner.fetch_concurrency", d.Planner.FetchConcurrency)
	v.SetDefault("planner.max_content_balanced", d.Planner.MaxContentBalanced)
	v.SetDefault("planner.max_content_focused", d.Planner.MaxContentFocused)
	v.SetDefault("llm.enabled", d.LLM.Enabled)
	v.SetDefault("llm.endpoint", d.LLM.Endpoint)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.timeout_ms", d.LLM.TimeoutMs)
	v.SetDefault("llm.max_retries", d.LLM.MaxRetries)
	v.SetDefault("llm.log_calls", d.LLM.LogCalls)
	v.SetDefault("worker.concurrency", d.Worker.Concurrency)
	v.SetDefault("worker.queue_size", d.Worker.QueueSize)
	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.prefix", d.Redis.Prefix)
	v.SetDefault("redis.channel", d.Redis.Channel)
	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.local_path", d.Storage.LocalPath)
	v.SetDefault("storage.minio_endpoint", d.Storage.MinioEndpoint)
	v.SetDefault("storage.minio_access_key", d.Storage.MinioAccessKey)
	v.SetDefault("storage.minio_secret_key", d.Storage.MinioSecretKey)
	v.SetDefault("storage.minio_bucket", d.Storage.MinioBucket)
	v.SetDefault("storage.minio_use_ssl", d.Storage.MinioUseSSL)
	v.SetDefault("tasks.expiry", d.Tasks.Expiry)
	v.SetDefault("tasks.janitor_interval", d.Tasks.JanitorInterval)
}

func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Planner.DefaultDailyMinutes <= 0 || c.Planner.DefaultDailyMinutes > 24*60 {
		return fmt.Errorf("planner.default_daily_minutes must be between 1 and 1440, got %d", c.Planner.DefaultDailyMinutes)
	}
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency)
	}
	switch c.Storage.Type {
	case StorageNone, StorageLocal:
	case StorageMinio:
		if c.Storage.MinioEndpoint == "" {
			return fmt.Errorf("storage.minio_endpoint is required when storage.type is minio")
		}
	default:
		return fmt.Errorf("unknown storage.type %q", c.Storage.Type)
	}
	return nil
}

// LLMSettings converts the llm section, keeping the per-task defaults.
func (c Config) LLMSettings() llm.LLMConfig {
	out := llm.DefaultConfig()
	out.Enabled = c.LLM.Enabled
	out.Endpoint = strings.TrimRight(c.LLM.Endpoint, "/")
	out.Model = c.LLM.Model
	out.TimeoutMs = c.LLM.TimeoutMs
	out.MaxRetries = c.LLM.MaxRetries
	out.LogCalls = c.LLM.LogCalls
	return out
}

func (c Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, File: c.Log.File}
}
