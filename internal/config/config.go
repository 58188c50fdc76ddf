package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// DefaultTeams is the closed set of academy squads used when TEAMS is not set.
var DefaultTeams = []string{"U13", "U15", "U17", "U19"}

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := FromLookup(os.LookupEnv)
	if err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}
	return cfg
}

// FromLookup builds a Config from the given lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	password, ok := lookup("COACH_PASSWORD")
	if !ok || password == "" {
		return Config{}, fmt.Errorf("required environment variable COACH_PASSWORD is not set")
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnv("COACH_SESSION_TTL", "12h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid COACH_SESSION_TTL: %w", err)
	}

	backend := strings.ToLower(getEnv("STORAGE_BACKEND", BackendCSV))
	if backend != BackendCSV && backend != BackendSQL {
		return Config{}, fmt.Errorf("unsupported STORAGE_BACKEND %q", backend)
	}

	teams := splitList(getEnv("TEAMS", ""))
	if len(teams) == 0 {
		teams = append([]string(nil), DefaultTeams...)
	}

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		StorageBackend: backend,
		DataDir:        getEnv("DATA_DIR", "player_data"),
		CatalogPath:    getEnv("CATALOG_PATH", "position_catalog.json"),
		DBName:         getEnv("DB_NAME", "academy.db"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		Cache: CacheConfig{
			TTL:      cacheTTL,
			RedisURL: getEnv("REDIS_URL", ""),
		},
		Teams: teams,
		Coach: CoachConfig{
			Password:   password,
			SessionTTL: sessionTTL,
		},
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		},
		ProjectID:   getEnv("GCP_PROJECT", ""),
		PushToken:   getEnv("PUBSUB_PUSH_TOKEN", ""),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
