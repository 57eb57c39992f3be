package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Observations(t *testing.T) {
	// Fresh registry per test to avoid duplicate registration
	c, err := NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	c.ObserveRemote("get", "success", 20*time.Millisecond)
	c.ObserveRemote("get", "success", 30*time.Millisecond)
	c.ObserveRemote("delete", "failure", time.Millisecond)
	c.ObserveCache("miss")
	c.ObserveCache("hit")
	c.ObserveCache("hit")
	c.SetRecords(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.remoteRequests.WithLabelValues("get", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.remoteRequests.WithLabelValues("delete", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.records))
	assert.Equal(t, 2, testutil.CollectAndCount(c.remoteDuration))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestCollector_Handler(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)
	c.ObserveCache("hit")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `roster_cache_lookups_total{result="hit"} 1`)
}
