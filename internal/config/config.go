// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Prefix is prepended to every environment variable, e.g. TRIVIA_PORT.
const Prefix = "trivia"

// Config holds process-wide settings read from the environment (and .env, if present).
type Config struct {
	Port      string `envconfig:"PORT" default:"3000"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	QuestionsFile string `envconfig:"QUESTIONS_FILE" default:"public/questions.json"`
	StaticDir     string `envconfig:"STATIC_DIR" default:"public"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	RedisAddr    string `envconfig:"REDIS_ADDR"`
	RedisDB      int    `envconfig:"REDIS_DB" default:"0"`
	JournalQueue string `envconfig:"JOURNAL_QUEUE" default:"trivia_actions"`

	DefaultQuestionTimer time.Duration `envconfig:"DEFAULT_QUESTION_TIMER" default:"5s"`
	RemoveEmptyRooms     bool          `envconfig:"REMOVE_EMPTY_ROOMS" default:"true"`
	AllowedOrigins       []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`

	HistorianBatchSize     int           `envconfig:"HISTORIAN_BATCH_SIZE" default:"20"`
	HistorianFlushInterval time.Duration `envconfig:"HISTORIAN_FLUSH_INTERVAL" default:"500ms"`
}

// Load decodes the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.DefaultQuestionTimer <= 0 {
		return Config{}, fmt.Errorf("config: DEFAULT_QUESTION_TIMER must be positive, got %s", cfg.DefaultQuestionTimer)
	}
	if cfg.HistorianBatchSize <= 0 {
		cfg.HistorianBatchSize = 20
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// NewLogger builds the logrus logger shared by every component.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Warnf("unknown log level %q, falling back to info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
