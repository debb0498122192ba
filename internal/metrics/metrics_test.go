package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTransition(t *testing.T) {
	m := New()

	m.RecordTransition("paid", "shipped", "ok")
	m.RecordTransition("paid", "shipped", "ok")
	m.RecordTransition("paid", "shipped", "validation")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("paid", "shipped", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("paid", "shipped", "validation")))
}

func TestRecordDeletionAndMedia(t *testing.T) {
	m := New()

	m.RecordDeletion("single", "soft_deleted")
	m.RecordMediaDeleteError()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.DeletionsTotal.WithLabelValues("single", "soft_deleted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MediaDeleteErrors))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordTransition("a", "b", "ok")
		m.RecordNotification("push", "error")
		m.RecordDeletion("bulk", "deleted")
		m.RecordMediaDeleteError()
		m.RecordAutoComplete("ok")
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET", "/orders/:id", 200, 10*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `orderflow_http_requests_total{method="GET",path="/orders/:id",status="200"} 1`)
}
