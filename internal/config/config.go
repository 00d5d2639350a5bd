package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the YAML file and QUIZ_* environment variables.
type Config struct {
	Env    string `mapstructure:"env"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		TTL      string `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	Postgres struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"postgres"`
	Quiz Quiz `mapstructure:"quiz"`
}

// Quiz configures the engine and where its collaborators load from.
type Quiz struct {
	DefinitionsPath string  `mapstructure:"definitions_path"` // JSON or YAML quiz definitions
	CatalogPath     string  `mapstructure:"catalog_path"`     // paintings JSON file or per-period directory
	CacheTTL        string  `mapstructure:"cache_ttl"`
	PassThreshold   float64 `mapstructure:"pass_threshold"`
	FirstQuizID     string  `mapstructure:"first_quiz_id"`
	ProgressKey     string  `mapstructure:"progress_key"`
	StudyKey        string  `mapstructure:"study_key"` // favorites, learned paintings and views
	// ProgressBackend is one of memory, file, redis, postgres.
	ProgressBackend string `mapstructure:"progress_backend"`
	ProgressPath    string `mapstructure:"progress_path"`
}

// Load reads the YAML config at path (a missing file is fine) and applies environment overrides,
// e.g. QUIZ_REDIS_ADDR or QUIZ_QUIZ_CATALOG_PATH.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetDefault("env", "local")
	v.SetDefault("server.port", "8080")
	// every key needs a default so AutomaticEnv overrides reach Unmarshal
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")
	v.SetDefault("postgres.url", "")
	v.SetDefault("quiz.definitions_path", "data/periods_quizzes.json")
	v.SetDefault("quiz.catalog_path", "data/paintings.json")
	v.SetDefault("quiz.cache_ttl", "10m")
	v.SetDefault("quiz.pass_threshold", 0.8)
	v.SetDefault("quiz.first_quiz_id", "")
	v.SetDefault("quiz.progress_key", "quiz_progress")
	v.SetDefault("quiz.study_key", "study_progress")
	v.SetDefault("quiz.progress_backend", "file")
	v.SetDefault("quiz.progress_path", "var/progress")

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{}
	if path != "" {
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
