package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/academy-stats/internal/auth"
	"github.com/mauv0809/academy-stats/internal/config"
	"github.com/mauv0809/academy-stats/internal/dashboard"
	"github.com/mauv0809/academy-stats/internal/notifier"
)

type Server struct {
	Dashboard      *dashboard.Service
	Sessions       *auth.SessionManager
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         chi.Router
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type statRequest struct {
	Stat string `json:"stat"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Fields any    `json:"fields,omitempty"`
}
