package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/academy-stats/internal/auth"
	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/config"
	"github.com/mauv0809/academy-stats/internal/dashboard"
	"github.com/mauv0809/academy-stats/internal/database"
	"github.com/mauv0809/academy-stats/internal/metrics"
	"github.com/mauv0809/academy-stats/internal/notifier/slack"
	"github.com/mauv0809/academy-stats/internal/pubsub"
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	testSlackSigningSecret = "test-signing-secret"
	testCoachPassword      = "rapids2024"
	testPushToken          = "push-secret"
)

// setupTestServer initializes a new server backed by an in-memory database.
func setupTestServer(t *testing.T, slackSigningSecret string) (*Server, *pubsub.MockPubSubClient) {
	t.Helper()
	return newTestServer(t, config.Config{
		Teams:       []string{"U13", "U15"},
		CORSOrigins: []string{"*"},
		PushToken:   testPushToken,
		Slack:       config.SlackConfig{SigningSecret: slackSigningSecret},
	})
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *pubsub.MockPubSubClient) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)

	cat, err := catalog.NewService(catalog.NewSQLStore(db))
	require.NoError(t, err)
	store := records.NewStore(records.NewSQLBackend(db), records.NewMemoryCache(time.Minute), metricsSvc)
	notif := slack.NewNotifierWithAPI(nil, "C123", metricsSvc)
	ps := pubsub.NewMock()
	dash := dashboard.New(cat, store, records.NewTeams(cfg.Teams), metricsSvc, notif, ps)
	sessions := auth.NewSessionManager(testCoachPassword, time.Hour)

	return NewServer(dash, sessions, metricsHandler, cfg, notif), ps
}

func do(t *testing.T, s *Server, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	rr := do(t, s, http.MethodPost, "/coach/login", map[string]string{"password": testCoachPassword}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func match(date, opponent string, minutes int, stats map[string]int) map[string]any {
	return map[string]any{
		"date":           date,
		"opponent":       opponent,
		"minutes_played": minutes,
		"position":       "Goalkeeper",
		"stats":          stats,
	}
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := form.Encode()
	req := httptest.NewRequest(http.MethodPost, targetURL, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))

	return req
}

func TestHealthCheckHandler(t *testing.T) {
	server, _ := setupTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestPositionHandlers(t *testing.T) {
	server, ps := setupTestServer(t, "")

	t.Run("default positions are listed", func(t *testing.T) {
		rr := do(t, server, http.MethodGet, "/positions", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Positions []string `json:"positions"`
			Teams     []string `json:"teams"`
		}
		decode(t, rr, &resp)
		assert.Len(t, resp.Positions, 7)
		assert.Equal(t, "Goalkeeper", resp.Positions[0])
		assert.Equal(t, []string{"U13", "U15"}, resp.Teams)
	})

	t.Run("stats of a position with a slash in its name", func(t *testing.T) {
		rr := do(t, server, http.MethodGet, "/positions/Defensive%20Midfielder%2FPivot/stats", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Stats []string `json:"stats"`
		}
		decode(t, rr, &resp)
		assert.Equal(t, []string{"ball_recoveries", "passes_completed", "turnovers", "creating_3_backline", "forward_passes_10plus"}, resp.Stats)
	})

	t.Run("unknown position is 404", func(t *testing.T) {
		rr := do(t, server, http.MethodGet, "/positions/Libero/stats", nil, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("catalog mutations require a coach session", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, "/positions", map[string]string{"name": "Sweeper"}, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = do(t, server, http.MethodPost, "/coach/login", map[string]string{"password": "wrong"}, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("coach edits the catalog", func(t *testing.T) {
		token := login(t, server)

		rr := do(t, server, http.MethodPost, "/positions", map[string]string{"name": "Sweeper"}, token)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = do(t, server, http.MethodPost, "/positions/Sweeper/stats", map[string]string{"stat": "interceptions"}, token)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = do(t, server, http.MethodGet, "/positions/Sweeper/stats", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "interceptions")

		rr = do(t, server, http.MethodDelete, "/positions/Sweeper/stats/interceptions", nil, token)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = do(t, server, http.MethodPost, "/positions/Libero/stats", map[string]string{"stat": "x"}, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = do(t, server, http.MethodPost, "/positions", map[string]string{"name": " "}, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = do(t, server, http.MethodDelete, "/positions/Sweeper?dry_run=true", nil, token)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		rr = do(t, server, http.MethodGet, "/positions/Sweeper/stats", nil, "")
		assert.Equal(t, http.StatusOK, rr.Code, "dry run must not remove the position")

		rr = do(t, server, http.MethodDelete, "/positions/Sweeper", nil, token)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		rr = do(t, server, http.MethodGet, "/positions/Sweeper/stats", nil, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)

		assert.Len(t, ps.Topics(), 4)
	})
}

func TestMatchHandlers(t *testing.T) {
	server, ps := setupTestServer(t, "")
	base := "/players/Jane%20Doe"

	t.Run("add match and read the player view", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, base+"/matches", match("2024-03-01", "Rivals FC", 90, map[string]int{"saves": 4, "clean_sheets": 1, "goals_conceded": 0}), "")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		rr = do(t, server, http.MethodPost, base+"/matches", match("2024-03-08", "City Academy", 45, map[string]int{"saves": 2}), "")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		rr = do(t, server, http.MethodGet, base+"?recent=1", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var view dashboard.PlayerView
		decode(t, rr, &view)
		assert.True(t, view.Found)
		assert.Equal(t, "Jane Doe", view.Card.Player)
		assert.Equal(t, "Goalkeeper", view.Card.Position)
		assert.Equal(t, 2, view.Card.Matches)
		assert.Equal(t, 135, view.Card.Minutes)
		assert.Equal(t, 6, view.Card.Totals.Values["saves"])
		require.Len(t, view.Card.Recent, 1)
		assert.Equal(t, "City Academy", view.Card.Recent[0].Opponent)
	})

	t.Run("average and trend", func(t *testing.T) {
		rr := do(t, server, http.MethodGet, base+"/average?stat=minutes_played", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var avg struct {
			Defined bool    `json:"defined"`
			Average float64 `json:"average"`
		}
		decode(t, rr, &avg)
		assert.True(t, avg.Defined)
		assert.InDelta(t, 67.5, avg.Average, 1e-9)

		rr = do(t, server, http.MethodGet, base+"/average?stat=goals", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"stat":"goals","defined":false}`, rr.Body.String())

		rr = do(t, server, http.MethodGet, base+"/trend?stat=clean_sheets", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"stat":"clean_sheets","points":[{"date":"2024-03-01","value":1}]}`, rr.Body.String())

		rr = do(t, server, http.MethodGet, base+"/trend", nil, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid record is 422 with fields", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, base+"/matches", match("2024-03-15", "", 0, nil), "")
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var resp struct {
			Fields []records.FieldError `json:"fields"`
		}
		decode(t, rr, &resp)
		var fields []string
		for _, f := range resp.Fields {
			fields = append(fields, f.Field)
		}
		assert.Contains(t, fields, "opponent")
		assert.Contains(t, fields, "minutes_played")
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, base+"/matches", map[string]any{"date": "not-a-date"}, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("dry run does not persist", func(t *testing.T) {
		rr := do(t, server, http.MethodPost, base+"/matches?dry_run=true", match("2024-03-15", "Dry FC", 60, nil), "")
		require.Equal(t, http.StatusOK, rr.Code)

		rr = do(t, server, http.MethodGet, base+"/matches", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var c records.Collection
		decode(t, rr, &c)
		assert.Len(t, c.Records, 2)
	})

	t.Run("edit and delete by index", func(t *testing.T) {
		rr := do(t, server, http.MethodPut, base+"/matches/1", match("2024-03-08", "City Academy", 60, map[string]int{"saves": 3}), "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var c records.Collection
		decode(t, rr, &c)
		assert.Equal(t, 60, c.Records[1].MinutesPlayed)

		rr = do(t, server, http.MethodPut, base+"/matches/9", match("2024-03-08", "City Academy", 60, nil), "")
		assert.Equal(t, http.StatusConflict, rr.Code)

		rr = do(t, server, http.MethodDelete, base+"/matches/abc", nil, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = do(t, server, http.MethodDelete, base+"/matches/0", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		decode(t, rr, &c)
		require.Len(t, c.Records, 1)
		assert.Equal(t, "City Academy", c.Records[0].Opponent)

		rr = do(t, server, http.MethodDelete, base+"/matches/1", nil, "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("unknown team is 400", func(t *testing.T) {
		rr := do(t, server, http.MethodGet, base+"?team=U99", nil, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	assert.Equal(t, []pubsub.EventType{
		pubsub.EventMatchRecorded,
		pubsub.EventMatchRecorded,
		pubsub.EventMatchUpdated,
		pubsub.EventMatchDeleted,
	}, ps.Topics())
}

func TestCoachViewHandlers(t *testing.T) {
	server, _ := setupTestServer(t, "")
	rr := do(t, server, http.MethodPost, "/players/Jane%20Doe/matches?team=U15", match("2024-03-01", "Rivals FC", 90, map[string]int{"saves": 4}), "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, server, http.MethodGet, "/players?team=U15", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := login(t, server)

	rr = do(t, server, http.MethodGet, "/players?team=u15", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Players []string `json:"players"`
	}
	decode(t, rr, &list)
	assert.Equal(t, []string{"Jane Doe"}, list.Players)

	rr = do(t, server, http.MethodGet, "/coach/overview?team=U15&players=Jane%20Doe,Ghost", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var overview struct {
		Players []dashboard.OverviewEntry `json:"players"`
	}
	decode(t, rr, &overview)
	require.Len(t, overview.Players, 2)
	require.NotNil(t, overview.Players[0].Card)
	assert.Equal(t, 90, overview.Players[0].Card.Minutes)
	assert.True(t, overview.Players[1].NoData)

	rr = do(t, server, http.MethodGet, "/coach/overview", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, server, http.MethodPost, "/coach/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, server, http.MethodGet, "/players?team=U15", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPlayerStatsCommandHandler(t *testing.T) {
	server, _ := setupTestServer(t, testSlackSigningSecret)
	rr := do(t, server, http.MethodPost, "/players/Jane%20Doe/matches?team=U15", match("2024-03-01", "Rivals FC", 90, map[string]int{"saves": 4}), "")
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("known player returns the summary", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"Jane Doe u15"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "Stats for Jane Doe (U15)")
		assert.Contains(t, rr.Body.String(), "*Saves*: 4")
	})

	t.Run("unknown player returns not found", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"Ghost Player"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "couldn't find any matches for *Ghost Player*")
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"Jane Doe"}}, "wrong-secret")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("empty text is 400", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"  "}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestParsePlayerStatsText(t *testing.T) {
	teams := []string{"U13", "U15"}
	tests := []struct {
		text, player, team string
	}{
		{"Jane Doe", "Jane Doe", ""},
		{"  jane   doe u15 ", "jane doe", "U15"},
		{"U15", "U15", ""},
		{"Jane U19", "Jane U19", ""},
	}
	for _, tc := range tests {
		player, team := parsePlayerStatsText(tc.text, teams)
		assert.Equal(t, tc.player, player, tc.text)
		assert.Equal(t, tc.team, team, tc.text)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := setupTestServer(t, "")
	rr := do(t, server, http.MethodPost, "/players/Jane%20Doe/matches", match("2024-03-01", "Rivals FC", 90, nil), "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, server, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `academy_match_record_mutations_total{op="append"} 1`)
}

func TestRecordEventsPushHandler(t *testing.T) {
	s, ps := setupTestServer(t, "")
	ps.ProcessMessageFunc = func(data []byte, returnValue any) error {
		return msgpack.Unmarshal(data, returnValue)
	}

	push := func(data []byte) *httptest.ResponseRecorder {
		envelope := map[string]any{
			"subscription": "projects/academy/subscriptions/record-events",
			"message": map[string]any{
				"data":       base64.StdEncoding.EncodeToString(data),
				"attributes": map[string]string{"event": string(pubsub.EventMatchRecorded)},
			},
		}
		return do(t, s, http.MethodPost, "/pubsub/record-events?token="+testPushToken, envelope, "")
	}

	t.Run("valid event", func(t *testing.T) {
		data, err := msgpack.Marshal(dashboard.RecordEvent{Player: "Jane Doe", Team: "U15", Index: 0, At: time.Now().UTC()})
		require.NoError(t, err)
		rr := push(data)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	})

	t.Run("invalid player", func(t *testing.T) {
		data, err := msgpack.Marshal(dashboard.RecordEvent{Team: "U15"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, push(data).Code)
	})

	t.Run("invalid base64", func(t *testing.T) {
		envelope := map[string]any{"message": map[string]any{"data": "%%%"}}
		rr := do(t, s, http.MethodPost, "/pubsub/record-events?token="+testPushToken, envelope, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pubsub/record-events?token="+testPushToken, strings.NewReader("{"))
		rr := httptest.NewRecorder()
		s.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRecordEventsPushAuth(t *testing.T) {
	data, err := msgpack.Marshal(dashboard.RecordEvent{Player: "Jane Doe", Team: "U15"})
	require.NoError(t, err)
	envelope := map[string]any{"message": map[string]any{"data": base64.StdEncoding.EncodeToString(data)}}

	s, ps := setupTestServer(t, "")
	for _, target := range []string{"/pubsub/record-events", "/pubsub/record-events?token=wrong"} {
		rr := do(t, s, http.MethodPost, target, envelope, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, target)
	}
	assert.Empty(t, ps.ProcessMessageCalls)

	disabled, _ := newTestServer(t, config.Config{Teams: []string{"U13", "U15"}})
	rr := do(t, disabled, http.MethodPost, "/pubsub/record-events?token=", envelope, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayerNamesCannotAddressPaths(t *testing.T) {
	s, _ := setupTestServer(t, "")

	rr := do(t, s, http.MethodGet, "/players/..%2Fsecret/matches", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodPost, "/players/AC%2FDC/matches", match("2024-03-01", "Rivals FC", 90, map[string]int{"saves": 2}), "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodGet, "/players/U13%2FJane%20Doe", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCORS(t *testing.T) {
	fromOrigin := func(s *Server, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		rr := httptest.NewRecorder()
		s.Router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("wildcard never allows credentials", func(t *testing.T) {
		s, _ := setupTestServer(t, "")
		rr := fromOrigin(s, "https://elsewhere.example")
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("listed origin gets credentials", func(t *testing.T) {
		s, _ := newTestServer(t, config.Config{Teams: []string{"U13"}, CORSOrigins: []string{"https://coach.example"}})
		rr := fromOrigin(s, "https://coach.example")
		assert.Equal(t, "https://coach.example", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

		rr = fromOrigin(s, "https://elsewhere.example")
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origins configured", func(t *testing.T) {
		s, _ := newTestServer(t, config.Config{Teams: []string{"U13"}})
		rr := fromOrigin(s, "https://coach.example")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
