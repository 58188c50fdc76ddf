package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	RecordMutations    *prometheus.CounterVec
	ValidationFailures prometheus.Counter
	StorageErrors      prometheus.Counter
	CatalogMutations   prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	EventsPublished    prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
