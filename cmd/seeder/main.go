package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/config"
	"github.com/mauv0809/academy-stats/internal/database"
	"github.com/mauv0809/academy-stats/internal/metrics"
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/prometheus/client_golang/prometheus"
)

var opponents = []string{"Rivals FC", "City Academy", "United Youth", "Harbour Rovers", "North End", "Valley Athletic"}

var firstNames = []string{"Jane", "Sam", "Alex", "Jordan", "Riley", "Casey", "Morgan", "Taylor"}
var lastNames = []string{"Doe", "Lee", "Garcia", "Okafor", "Nguyen", "Smith", "Silva", "Brown"}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	defaults := map[string]string{
		"STORAGE_BACKEND":   config.BackendCSV,
		"DATA_DIR":          "player_data",
		"DB_NAME":           "academy.db",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
		"TEAMS":             strings.Join(config.DefaultTeams, ","),
		"SEED_PLAYERS":      "8",
		"SEED_MATCHES":      "12",
	}
	cfg := make(map[string]string, len(defaults))
	for key, def := range defaults {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			cfg[key] = value
		} else {
			cfg[key] = def
		}
	}
	return cfg
}

func atoi(cfg map[string]string, key string) int {
	n, err := strconv.Atoi(cfg[key])
	if err != nil || n < 0 {
		log.Fatalf("Error: %s must be a non-negative integer, got %q", key, cfg[key])
	}
	return n
}

func main() {
	log.Info("Starting seeder...")
	cfg := loadConfig()
	ctx := context.Background()

	var backend records.Backend
	switch strings.ToLower(cfg["STORAGE_BACKEND"]) {
	case config.BackendSQL:
		db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
		if err != nil {
			log.Fatalf("Failed to initialize database: %s", err)
		}
		defer teardown()
		backend = records.NewSQLBackend(db)
	default:
		backend = records.NewCSVBackend(cfg["DATA_DIR"])
	}

	store := records.NewStore(backend, nil, metrics.NewService(prometheus.NewRegistry()))
	teams := records.NewTeams(strings.Split(cfg["TEAMS"], ","))
	cat := catalog.Default()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	numPlayers := atoi(cfg, "SEED_PLAYERS")
	numMatches := atoi(cfg, "SEED_MATCHES")
	log.Info("Preparing to seed players", "players", numPlayers, "matches_per_player", numMatches)
	startTime := time.Now()

	teamNames := teams.Names()
	for i := 0; i < numPlayers; i++ {
		name := fmt.Sprintf("%s %s", firstNames[i%len(firstNames)], lastNames[(i/len(firstNames)+i)%len(lastNames)])
		team := ""
		if len(teamNames) > 0 {
			team = teamNames[i%len(teamNames)]
		}
		key, err := teams.Key(name, team)
		if err != nil {
			log.Fatalf("Invalid seed key %q: %s", name, err)
		}

		position := cat.Positions[rng.Intn(len(cat.Positions))]
		c, found, err := store.Load(ctx, key)
		if err != nil {
			log.Fatalf("Failed to load %s: %s", key, err)
		}
		if !found {
			c = records.NewCollection(key, position.Stats)
		}

		start := time.Now().AddDate(0, 0, -7*numMatches)
		for m := 0; m < numMatches; m++ {
			day := start.AddDate(0, 0, 7*m)
			rec := records.MatchRecord{
				Date:          records.NewDate(day.Year(), day.Month(), day.Day()),
				Opponent:      opponents[rng.Intn(len(opponents))],
				MinutesPlayed: 10 + rng.Intn(81),
				Position:      position.Name,
				Stats:         make(map[string]int, len(position.Stats)),
			}
			for _, stat := range position.Stats {
				rec.Stats[stat] = rng.Intn(6)
			}
			if err := store.Append(ctx, c, rec); err != nil {
				log.Fatalf("Failed to append match for %s: %s", key, err)
			}
		}
		log.Info("Seeded player", "player", key.Player, "team", key.Team, "position", position.Name, "matches", c.Len())
	}

	log.Info("Seeding complete", "players", numPlayers, "duration", time.Since(startTime))
}
