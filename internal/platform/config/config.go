package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration sourced from the environment.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration

	PostgresDSN string

	Redis             RedisConfig
	CommunityCacheTTL time.Duration

	Kafka KafkaConfig

	JWTSigningKey string

	// MaxCommunitiesPerBatch caps how many community references one add or
	// remove call may carry.
	MaxCommunitiesPerBatch int
}

// RedisConfig holds connection tuning for the optional Redis cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker addresses and the topics this service produces to.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	IndexTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                   envOr("ARCHIVA_ADDR", ":8080"),
		ShutdownTimeout:        envDuration("ARCHIVA_SHUTDOWN_TIMEOUT", 10*time.Second),
		PostgresDSN:            os.Getenv("ARCHIVA_POSTGRES_DSN"),
		CommunityCacheTTL:      envDuration("ARCHIVA_COMMUNITY_CACHE_TTL", 5*time.Minute),
		JWTSigningKey:          envOr("ARCHIVA_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		MaxCommunitiesPerBatch: envInt("ARCHIVA_MAX_COMMUNITIES_PER_BATCH", 10),
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("ARCHIVA_REDIS_URL"),
		PoolSize:     envInt("ARCHIVA_REDIS_POOL_SIZE", 10),
		MinIdleConns: envInt("ARCHIVA_REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  envDuration("ARCHIVA_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  envDuration("ARCHIVA_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: envDuration("ARCHIVA_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}

	if brokers := os.Getenv("ARCHIVA_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Kafka.AuditTopic = envOr("ARCHIVA_KAFKA_AUDIT_TOPIC", "archiva.audit")
	cfg.Kafka.IndexTopic = envOr("ARCHIVA_KAFKA_INDEX_TOPIC", "archiva.records.index")

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
