package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_collection_cache_hits_total",
			Help: "The total number of collection loads served from the read cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_collection_cache_misses_total",
			Help: "The total number of collection loads that went to storage.",
		}),
		RecordMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_match_record_mutations_total",
			Help: "The total number of persisted match record mutations by operation.",
		}, []string{"op"}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_match_record_validation_failures_total",
			Help: "The total number of rejected match record submissions.",
		}),
		StorageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_storage_errors_total",
			Help: "The total number of failed storage reads and writes.",
		}),
		CatalogMutations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_catalog_mutations_total",
			Help: "The total number of position catalog mutations requested.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "academy_events_published_total",
			Help: "The total number of record change events published.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "academy_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.CacheHits,
		s.CacheMisses,
		s.RecordMutations,
		s.ValidationFailures,
		s.StorageErrors,
		s.CatalogMutations,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.EventsPublished,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncCacheHits() {
	s.CacheHits.Inc()
}

func (s *Service) IncCacheMisses() {
	s.CacheMisses.Inc()
}

func (s *Service) IncRecordsAppended() {
	s.RecordMutations.WithLabelValues("append").Inc()
}

func (s *Service) IncRecordsUpdated() {
	s.RecordMutations.WithLabelValues("update").Inc()
}

func (s *Service) IncRecordsDeleted() {
	s.RecordMutations.WithLabelValues("delete").Inc()
}

func (s *Service) IncValidationFailures() {
	s.ValidationFailures.Inc()
}

func (s *Service) IncStorageErrors() {
	s.StorageErrors.Inc()
}

func (s *Service) IncCatalogMutations() {
	s.CatalogMutations.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) IncEventsPublished() {
	s.EventsPublished.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
