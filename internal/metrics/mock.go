package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	cacheHits          int
	cacheMisses        int
	recordsAppended    int
	recordsUpdated     int
	recordsDeleted     int
	validationFailures int
	storageErrors      int
	catalogMutations   int
	slackNotifSent     int
	slackNotifFailed   int
	eventsPublished    int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) inc(counter *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
}

func (m *Mock) get(counter *int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *counter
}

func (m *Mock) IncCacheHits()          { m.inc(&m.cacheHits) }
func (m *Mock) IncCacheMisses()        { m.inc(&m.cacheMisses) }
func (m *Mock) IncRecordsAppended()    { m.inc(&m.recordsAppended) }
func (m *Mock) IncRecordsUpdated()     { m.inc(&m.recordsUpdated) }
func (m *Mock) IncRecordsDeleted()     { m.inc(&m.recordsDeleted) }
func (m *Mock) IncValidationFailures() { m.inc(&m.validationFailures) }
func (m *Mock) IncStorageErrors()      { m.inc(&m.storageErrors) }
func (m *Mock) IncCatalogMutations()   { m.inc(&m.catalogMutations) }
func (m *Mock) IncSlackNotifSent()     { m.inc(&m.slackNotifSent) }
func (m *Mock) IncSlackNotifFailed()   { m.inc(&m.slackNotifFailed) }
func (m *Mock) IncEventsPublished()    { m.inc(&m.eventsPublished) }

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

func (m *Mock) CacheHits() int          { return m.get(&m.cacheHits) }
func (m *Mock) CacheMisses() int        { return m.get(&m.cacheMisses) }
func (m *Mock) RecordsAppended() int    { return m.get(&m.recordsAppended) }
func (m *Mock) RecordsUpdated() int     { return m.get(&m.recordsUpdated) }
func (m *Mock) RecordsDeleted() int     { return m.get(&m.recordsDeleted) }
func (m *Mock) ValidationFailures() int { return m.get(&m.validationFailures) }
func (m *Mock) StorageErrors() int      { return m.get(&m.storageErrors) }
func (m *Mock) CatalogMutations() int   { return m.get(&m.catalogMutations) }
func (m *Mock) SlackNotifSent() int     { return m.get(&m.slackNotifSent) }
func (m *Mock) SlackNotifFailed() int   { return m.get(&m.slackNotifFailed) }
func (m *Mock) EventsPublished() int    { return m.get(&m.eventsPublished) }
