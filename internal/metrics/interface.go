package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncCacheHits()
	IncCacheMisses()
	IncRecordsAppended()
	IncRecordsUpdated()
	IncRecordsDeleted()
	IncValidationFailures()
	IncStorageErrors()
	IncCatalogMutations()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	IncEventsPublished()
	SetStartupTime(duration float64)
}
