package http

import (
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mauv0809/academy-stats/internal/auth"
	"github.com/mauv0809/academy-stats/internal/config"
	"github.com/mauv0809/academy-stats/internal/dashboard"
	"github.com/mauv0809/academy-stats/internal/notifier"
)

func NewServer(dash *dashboard.Service, sessions *auth.SessionManager, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier) *Server {
	server := &Server{
		Dashboard:      dash,
		Sessions:       sessions,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         chi.NewRouter(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	r := s.Router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(s.Cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: !slices.Contains(s.Cfg.CORSOrigins, "*"),
			MaxAge:           300,
		}))
	}
	r.Use(paramsMiddleware)

	r.Handle("/metrics", s.MetricsHandler)
	r.Get("/health", s.HealthCheckHandler())

	r.Post("/coach/login", s.LoginHandler())
	r.Post("/coach/logout", s.LogoutHandler())

	r.Get("/positions", s.ListPositionsHandler())
	r.Get("/positions/{position}/stats", s.PositionStatsHandler())

	// Coach-only routes.
	r.Group(func(r chi.Router) {
		r.Use(s.Sessions.RequireCoach)
		r.Post("/positions", s.AddPositionHandler())
		r.Delete("/positions/{position}", s.RemovePositionHandler())
		r.Post("/positions/{position}/stats", s.AddStatHandler())
		r.Delete("/positions/{position}/stats/{stat}", s.RemoveStatHandler())
		r.Get("/players", s.ListPlayersHandler())
		r.Get("/coach/overview", s.CoachOverviewHandler())
	})

	r.Route("/players/{player}", func(r chi.Router) {
		r.Get("/", s.PlayerViewHandler())
		r.Get("/matches", s.ListMatchesHandler())
		r.Post("/matches", s.AddMatchHandler())
		r.Put("/matches/{index}", s.EditMatchHandler())
		r.Delete("/matches/{index}", s.DeleteMatchHandler())
		r.Get("/trend", s.TrendHandler())
		r.Get("/average", s.AverageHandler())
	})

	if s.Cfg.PushToken == "" {
		log.Info("PUBSUB_PUSH_TOKEN not set, record event push endpoint disabled")
	} else {
		r.With(s.pushTokenMiddleware).Post("/pubsub/record-events", s.RecordEventsPushHandler())
	}

	if s.Cfg.Slack.SigningSecret == "" {
		log.Warn("SLACK_SIGNING_SECRET not set, slash commands are not verified")
	}
	r.With(s.slackVerifyMiddleware).Post("/slack/command/player-stats", s.PlayerStatsCommandHandler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
