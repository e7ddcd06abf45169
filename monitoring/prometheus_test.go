package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRejectedBlockReasons(t *testing.T) {
	InitRejectedBlockReasons([]string{"stale_reason", "other_reason"})
	assert.Equal(t, float64(0), testutil.ToFloat64(nodeMetrics.rejectedBlocks.WithLabelValues("stale_reason")))

	RecordRejectedBlock("stale_reason")
	assert.Equal(t, float64(1), testutil.ToFloat64(nodeMetrics.rejectedBlocks.WithLabelValues("stale_reason")))

	// Registering again leaves existing counts alone.
	InitRejectedBlockReasons([]string{"stale_reason"})
	assert.Equal(t, float64(1), testutil.ToFloat64(nodeMetrics.rejectedBlocks.WithLabelValues("stale_reason")))
}

func TestRegisterMetrics(t *testing.T) {
	InitRejectedBlockReasons([]string{"listed_reason"})
	mux := http.NewServeMux()
	RegisterMetrics(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `powchain_node_rejected_block_count{reason="listed_reason"} 0`)
}
