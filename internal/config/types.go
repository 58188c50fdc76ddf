package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Port           string
	StorageBackend string
	DataDir        string
	CatalogPath    string
	DBName         string
	Turso          TursoConfig
	Cache          CacheConfig
	Teams          []string
	Coach          CoachConfig
	Slack          SlackConfig
	ProjectID      string
	PushToken      string
	CORSOrigins    []string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type CacheConfig struct {
	TTL      time.Duration
	RedisURL string
}

type CoachConfig struct {
	Password   string
	SessionTTL time.Duration
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

// Storage backends.
const (
	BackendCSV = "csv"
	BackendSQL = "sql"
)
