package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncRecordsAppended()
	svc.IncRecordsAppended()
	svc.IncRecordsDeleted()
	svc.IncCacheHits()
	svc.SetStartupTime(1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.RecordMutations.WithLabelValues("append")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.RecordMutations.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.CacheHits))
	assert.Equal(t, 1.5, testutil.ToFloat64(svc.StartupTimeSeconds))
}

func TestMetricsHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)
	svc.IncCatalogMutations()

	rr := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/metrics", nil)
	require.NoError(t, err)
	NewMetricsHandler(reg).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "academy_catalog_mutations_total 1")
}

func TestMock_Counts(t *testing.T) {
	m := NewMock()
	m.IncStorageErrors()
	m.IncStorageErrors()
	m.IncEventsPublished()
	assert.Equal(t, 2, m.StorageErrors())
	assert.Equal(t, 1, m.EventsPublished())
	assert.Equal(t, 0, m.SlackNotifSent())
}
