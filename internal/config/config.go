// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/solitaire/internal/game"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration, read from the environment. A .env
// file is loaded by the commands through godotenv/autoload before Load runs.
type Config struct {
	Port     string
	LogLevel logrus.Level

	RedisAddr   string
	RedisDB     int
	QueueName   string
	SnapshotTTL time.Duration

	// SessionIdle is how long a paused session stays in memory.
	SessionIdle time.Duration

	// Seed fixes the shuffle of every new session; 0 shuffles from the clock.
	Seed int64

	DefaultsFile string
	Defaults     map[game.Variant]game.Options

	HistorianBatchSize int
	HistorianFlush     time.Duration
}

// Load reads the environment and, when SOLITAIRE_DEFAULTS_FILE is set, the
// per-variant option defaults from that YAML file.
func Load() (*Config, error) {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "debug"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           level,
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		QueueName:          getEnv("HISTORIAN_QUEUE_NAME", "solitaire_actions"),
		SnapshotTTL:        getEnvDuration("SNAPSHOT_TTL", 24*time.Hour),
		SessionIdle:        getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		Seed:               int64(getEnvInt("SOLITAIRE_SEED", 0)),
		DefaultsFile:       os.Getenv("SOLITAIRE_DEFAULTS_FILE"),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
	}

	cfg.Defaults = map[game.Variant]game.Options{}
	if cfg.DefaultsFile != "" {
		data, err := os.ReadFile(cfg.DefaultsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read defaults file: %w", err)
		}
		if cfg.Defaults, err = ParseDefaults(data); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// ParseDefaults decodes a YAML document keyed by variant name. Each entry is
// applied on top of game.DefaultOptions, so a variant only lists what it
// changes:
//
//	klondike:
//	  dealThree: false
//	  vegas: true
//	spider:
//	  spiderSuits: 2
func ParseDefaults(data []byte) (map[game.Variant]game.Options, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse defaults file: %w", err)
	}

	out := make(map[game.Variant]game.Options, len(doc))
	for name, node := range doc {
		v, err := game.ParseVariant(name)
		if err != nil {
			return nil, err
		}
		opts := game.DefaultOptions()
		if err := node.Decode(&opts); err != nil {
			return nil, fmt.Errorf("defaults for %s: %w", name, err)
		}
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("defaults for %s: %w", name, err)
		}
		out[v] = opts
	}
	return out, nil
}

// OptionsFor returns the configured defaults for v.
func (c *Config) OptionsFor(v game.Variant) game.Options {
	if opts, ok := c.Defaults[v]; ok {
		return opts
	}
	return game.DefaultOptions()
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	return logger
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}
