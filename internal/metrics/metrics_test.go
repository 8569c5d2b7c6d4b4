package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(transitions.WithLabelValues("HR", "APPLIED", "SCREENING", OutcomeSuccess))
	RecordTransition("HR", "APPLIED", "SCREENING", OutcomeSuccess)
	after := testutil.ToFloat64(transitions.WithLabelValues("HR", "APPLIED", "SCREENING", OutcomeSuccess))
	assert.Equal(t, before+1, after)

	RecordTransition("LEAD", "", "OFFER", "NOT_FOUND")
	assert.Equal(t, float64(1), testutil.ToFloat64(transitions.WithLabelValues("LEAD", "unknown", "OFFER", "NOT_FOUND")))
}

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(submissions.WithLabelValues("DUPLICATE"))
	RecordSubmission("DUPLICATE")
	assert.Equal(t, before+1, testutil.ToFloat64(submissions.WithLabelValues("DUPLICATE")))
}

func TestHTTPStarted(t *testing.T) {
	done := HTTPStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpInFlight))
	done("get", "/api/applications/:id", http.StatusOK)
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/applications/:id", "200")))

	HTTPStarted()("POST", "", http.StatusNotFound)
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("POST", "unmatched", "404")))
}

func TestHandlerExposesLifecycleMetrics(t *testing.T) {
	RecordSubmission(OutcomeSuccess)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hirehub_lifecycle_submissions_total")
}
