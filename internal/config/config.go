package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries infrastructure-level settings only. Pipeline parameters
// (chunk sizes, similarity algorithm, top-k) live in the database
// settings table.
type Config struct {
	ServiceName string `yaml:"service_name"`
	LogLevel    string `yaml:"log_level"`

	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	PostgresDSN string `yaml:"postgres_dsn"`

	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	IngestTimeout   time.Duration `yaml:"ingest_timeout"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Destinations maps destination names referenced by bot configs to
	// provider endpoints. Populated from DESTINATION_<NAME>_URL and
	// DESTINATION_<NAME>_API_KEY environment variables.
	Destinations map[string]Destination `yaml:"destinations"`
}

type Destination struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// Load reads the optional YAML file named by CONFIG_PATH, then lets
// environment variables override every field.
func Load(service string) (Config, error) {
	cfg := Config{
		ServiceName:     service,
		LogLevel:        "info",
		HTTPAddr:        ":8080",
		MetricsAddr:     ":9090",
		NATSSubject:     "documents.ingest",
		ProviderTimeout: 120 * time.Second,
		IngestTimeout:   10 * time.Minute,
		RateLimitRPS:    20,
		RateLimitBurst:  40,
		Destinations:    map[string]Destination{},
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		if cfg.Destinations == nil {
			cfg.Destinations = map[string]Destination{}
		}
	}

	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPAddr = envOr("HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = envOr("METRICS_ADDR", cfg.MetricsAddr)
	cfg.PostgresDSN = envOr("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.NATSURL = envOr("NATS_URL", cfg.NATSURL)
	cfg.NATSSubject = envOr("NATS_SUBJECT", cfg.NATSSubject)
	cfg.ProviderTimeout = envDurationOr("PROVIDER_TIMEOUT", cfg.ProviderTimeout)
	cfg.IngestTimeout = envDurationOr("INGEST_TIMEOUT", cfg.IngestTimeout)
	cfg.RateLimitRPS = envFloatOr("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = envIntOr("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	loadDestinationsFromEnv(cfg.Destinations, os.Environ())

	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN is required")
	}
	if cfg.NATSURL == "" {
		return Config{}, fmt.Errorf("NATS_URL is required")
	}
	return cfg, nil
}

// loadDestinationsFromEnv scans DESTINATION_<NAME>_URL / _API_KEY pairs.
// Names are lowercased with underscores kept, e.g. DESTINATION_OPENAI_URL
// becomes destination "openai".
func loadDestinationsFromEnv(out map[string]Destination, environ []string) {
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, "DESTINATION_") {
			continue
		}
		rest := strings.TrimPrefix(key, "DESTINATION_")

		var name string
		var field string
		switch {
		case strings.HasSuffix(rest, "_API_KEY"):
			name = strings.TrimSuffix(rest, "_API_KEY")
			field = "api_key"
		case strings.HasSuffix(rest, "_URL"):
			name = strings.TrimSuffix(rest, "_URL")
			field = "url"
		default:
			continue
		}
		if name == "" {
			continue
		}

		name = strings.ToLower(name)
		dest := out[name]
		if field == "url" {
			dest.URL = value
		} else {
			dest.APIKey = value
		}
		out[name] = dest
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
