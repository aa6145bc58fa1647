// Package config holds the two configuration shapes the system uses:
// Options, the pure library-facing configuration for a planning pass, and
// ServiceConfig, the environment-driven configuration for the demo HTTP
// server in cmd/kara-server.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kara-engine/kara/internal/hashing"
	"github.com/kara-engine/kara/internal/splitting"
)

// DefaultEpsilon is the reuse cost used when Options.Epsilon is left at its
// zero value, per spec.md's resolution of two divergent reference defaults.
const DefaultEpsilon = 0.01

// Options is the pure, library-facing configuration for an Updater: how
// large a chunk may be, how strongly to favor reuse, and which Splitter/
// Hasher to use.
type Options struct {
	MaxChunkSize int
	Epsilon      float64
	Splitter     splitting.Splitter
	Hasher       hashing.Hasher
}

// WithDefaults returns a copy of o with Epsilon and Hasher filled in when
// left at their zero values. MaxChunkSize and Splitter have no sensible
// default and are left as-is for the validator to reject if missing.
func (o Options) WithDefaults() Options {
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Hasher == nil {
		o.Hasher = hashing.SHA256Hasher{}
	}
	return o
}

// ServiceConfig is the environment-driven configuration for the demo
// server in cmd/kara-server, loaded the same way the teacher loads its own
// service configuration: a .env file via godotenv, then os.Getenv with
// defaults.
type ServiceConfig struct {
	RedisURL         string
	RedisPassword    string
	RedisDB          int
	QdrantURL        string
	QdrantCollection string
	CorpusDir        string
	ServerPort       string
	LogLevel         string
	LogFormat        string
	MaxChunkSize     int
	Epsilon          float64
}

// Load reads ServiceConfig from a .env file (if present) and the process
// environment.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	cfg := &ServiceConfig{
		RedisURL:         getEnvOrDefault("REDIS_URL", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		QdrantURL:        getEnvOrDefault("QDRANT_URL", "http://localhost:6334"),
		QdrantCollection: getEnvOrDefault("QDRANT_COLLECTION", "kara_chunks"),
		CorpusDir:        os.Getenv("CORPUS_DIR"),
		ServerPort:       getEnvOrDefault("SERVER_PORT", "8080"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        getEnvOrDefault("LOG_FORMAT", "json"),
		MaxChunkSize:     getEnvAsInt("MAX_CHUNK_SIZE", 1000),
		Epsilon:          getEnvAsFloat("EPSILON", DefaultEpsilon),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}
