package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.SignIn("password", true)
	c.SignIn("password", false)
	c.SignIn("google", true)
	c.TokenRefreshed(false)
	c.BillWritten("create")
	c.BillWritten("create")
	c.FileUploaded(true)

	require.Equal(t, 1.0, testutil.ToFloat64(c.signIns.WithLabelValues("password", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.signIns.WithLabelValues("password", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.signIns.WithLabelValues("google", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.refreshes.WithLabelValues("failure")))
	require.Equal(t, 2.0, testutil.ToFloat64(c.billWrites.WithLabelValues("create")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.fileUploads.WithLabelValues("success")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.BillWritten("update")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `billsplit_bill_writes_total{op="update"} 1`)
}

func TestNopRecorder(t *testing.T) {
	Nop.SignIn("password", true)
	Nop.TokenRefreshed(true)
	Nop.BillWritten("create")
	Nop.FileUploaded(false)
}
