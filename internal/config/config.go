package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	QueueMemory = "memory"
	QueueKafka  = "kafka"
	QueueSQS    = "sqs"
)

// Config is the runtime configuration, read from the environment.
type Config struct {
	HTTPAddr         string
	StorageBackend   string
	DatabaseURL      string
	QueueBackend     string
	KafkaBrokers     []string
	KafkaGroupID     string
	SQSQueueURL      string
	AuditJournalPath string
	LogLevel         zerolog.Level
	LockStripes      int
	Env              string
}

// IsDev reports whether console logging should be used.
func (c Config) IsDev() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function and validates it.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPAddr:         get("HTTP_ADDR", ":8080"),
		StorageBackend:   strings.ToLower(get("STORAGE_BACKEND", StorageMemory)),
		DatabaseURL:      get("DATABASE_URL", ""),
		QueueBackend:     strings.ToLower(get("QUEUE_BACKEND", QueueMemory)),
		KafkaGroupID:     get("KAFKA_GROUP_ID", "medical-consent-audit"),
		SQSQueueURL:      get("SQS_QUEUE_URL", ""),
		AuditJournalPath: get("AUDIT_JOURNAL_PATH", ""),
		Env:              get("ENV", "production"),
	}
	if brokers := get("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(get("LOG_LEVEL", "info")))
	if err != nil {
		return Config{}, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	stripes, err := strconv.Atoi(get("LOCK_STRIPES", "256"))
	if err != nil || stripes <= 0 {
		return Config{}, fmt.Errorf("config: LOCK_STRIPES must be a positive integer")
	}
	cfg.LockStripes = stripes

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.QueueBackend {
	case QueueMemory:
	case QueueKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("config: KAFKA_BROKERS is required for QUEUE_BACKEND=kafka")
		}
	case QueueSQS:
		if c.SQSQueueURL == "" {
			return fmt.Errorf("config: SQS_QUEUE_URL is required for QUEUE_BACKEND=sqs")
		}
	default:
		return fmt.Errorf("config: unknown QUEUE_BACKEND %q", c.QueueBackend)
	}
	return nil
}
