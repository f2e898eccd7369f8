package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/finance-dashboard/internal/ingest"
)

func TestRecorder(t *testing.T) {
	var r Recorder

	runs := testutil.ToFloat64(PipelineRuns.WithLabelValues(string(ingest.SourceUpload)))
	fallbacks := testutil.ToFloat64(UploadFallbacks)
	empties := testutil.ToFloat64(EmptySelections)
	failures := testutil.ToFloat64(PipelineFailures.WithLabelValues("unexpected"))

	r.ObserveRun(ingest.SourceUpload, 5*time.Millisecond)
	r.ObserveFallback()
	r.ObserveEmpty()
	r.ObserveFailure("unexpected")

	assert.Equal(t, runs+1, testutil.ToFloat64(PipelineRuns.WithLabelValues(string(ingest.SourceUpload))))
	assert.Equal(t, fallbacks+1, testutil.ToFloat64(UploadFallbacks))
	assert.Equal(t, empties+1, testutil.ToFloat64(EmptySelections))
	assert.Equal(t, failures+1, testutil.ToFloat64(PipelineFailures.WithLabelValues("unexpected")))
}

func TestHandler(t *testing.T) {
	Recorder{}.ObserveFallback()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "dashboard_upload_fallbacks_total")
}
