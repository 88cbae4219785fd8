package observe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.Identify("u-1")
	c.Identify("u-2")
	c.RecordResolution("bearer", "authenticated")
	c.RecordExchange("success")
	c.RecordExchange("invalid_token")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.identified))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resolutions.WithLabelValues("bearer", "authenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.exchanges.WithLabelValues("invalid_token")))
}

func TestCollectorHandlerServesMetrics(t *testing.T) {
	c := NewCollector()
	c.RecordExchange("success")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	c.Handler().ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "builder_auth_federated_exchanges_total")
}
