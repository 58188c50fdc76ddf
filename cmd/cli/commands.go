package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	position string
	recent   int
	date     string
	opponent string
	minutes  int
	stats    []string
	stat     string
)

func init() {
	playerCmd.Flags().StringVar(&position, "position", "", "Position to summarize (defaults to the last recorded one)")
	playerCmd.Flags().IntVar(&recent, "recent", 3, "Number of recent matches to show")

	addMatchCmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "Match date (YYYY-MM-DD)")
	addMatchCmd.Flags().StringVar(&opponent, "opponent", "", "Opponent team")
	addMatchCmd.Flags().IntVar(&minutes, "minutes", 0, "Minutes played")
	addMatchCmd.Flags().StringVar(&position, "position", "", "Position played")
	addMatchCmd.Flags().StringArrayVar(&stats, "stat", nil, "Stat value as name=value, repeatable")

	trendCmd.Flags().StringVar(&stat, "stat", "minutes_played", "Stat to chart")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(addMatchCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var positionsCmd = &cobra.Command{
	Use:   "positions [position]",
	Short: "List positions, or the stats tracked for one position",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return performGetRequest("/positions/" + url.PathEscape(args[0]) + "/stats")
		}
		return performGetRequest("/positions")
	},
}

var playerCmd = &cobra.Command{
	Use:   "player <name>",
	Short: "Show a player's summary and matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"recent": {strconv.Itoa(recent)}}
		if position != "" {
			q.Set("position", position)
		}
		return performGetRequest(playerPath(args[0], "", q))
	},
}

var addMatchCmd = &cobra.Command{
	Use:   "add-match <name>",
	Short: "Record a match for a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseStats(stats)
		if err != nil {
			return err
		}
		body := map[string]any{
			"date":           date,
			"opponent":       opponent,
			"minutes_played": minutes,
			"position":       position,
			"stats":          values,
		}
		q := url.Values{}
		if dryRun {
			q.Set("dry_run", "true")
		}
		return performRequest(http.MethodPost, playerPath(args[0], "/matches", q), body, "")
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend <name>",
	Short: "Show a stat over time for a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(playerPath(args[0], "/trend", url.Values{"stat": {stat}}))
	},
}

var overviewCmd = &cobra.Command{
	Use:   "overview [players...]",
	Short: "Coach overview of the selected players, or the team roster when none are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := login()
		if err != nil {
			return err
		}
		q := url.Values{}
		if team != "" {
			q.Set("team", team)
		}
		if len(args) == 0 {
			return performRequest(http.MethodGet, "/players?"+q.Encode(), nil, token)
		}
		q.Set("players", strings.Join(args, ","))
		return performRequest(http.MethodGet, "/coach/overview?"+q.Encode(), nil, token)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func playerPath(name, suffix string, q url.Values) string {
	if team != "" {
		q.Set("team", team)
	}
	path := "/players/" + url.PathEscape(name) + suffix
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return path
}

// parseStats turns name=value pairs into a stats map.
func parseStats(pairs []string) (map[string]int, error) {
	values := make(map[string]int, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("stat %q must look like name=value", p)
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", name, err)
		}
		values[strings.TrimSpace(name)] = v
	}
	return values, nil
}

func login() (string, error) {
	if password == "" {
		return "", fmt.Errorf("coach password required, use --password or COACH_PASSWORD")
	}
	payload, _ := json.Marshal(map[string]string{"password": password})
	resp, err := http.Post(host+"/coach/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to log in: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login rejected: %s", resp.Status)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	return out.Token, nil
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint, nil, "")
}

func performRequest(method, endpoint string, body any, token string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s %s\n", method, url)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
