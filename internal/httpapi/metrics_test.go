package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"eventdriver/internal/driver"
)

func TestMetrics_RoutePatternLabels(t *testing.T) {
	h := NewMux(driver.New(nil))
	c := httpRequestsTotal.WithLabelValues("/events/a", http.MethodPost, "200")
	before := testutil.ToFloat64(c)
	if w := post(t, h, "/events/a", `{"field_a1":1,"field_a2":false}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Fatalf("requests_total delta=%v", got)
	}
}

func TestMetrics_UnmatchedPathsShareOneSeries(t *testing.T) {
	h := NewMux(driver.New(nil))
	reqSeries := testutil.CollectAndCount(httpRequestsTotal)
	inflightSeries := testutil.CollectAndCount(httpInflight)
	unmatched := httpRequestsTotal.WithLabelValues(unmatchedRoute, http.MethodGet, "404")
	before := testutil.ToFloat64(unmatched)
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/scan-%d", i), nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status=%d", w.Code)
		}
	}
	if got := testutil.ToFloat64(unmatched) - before; got != 50 {
		t.Fatalf("unmatched delta=%v", got)
	}
	// The unmatched GET 404 series and the GET gauge may be new; nothing else.
	if got := testutil.CollectAndCount(httpRequestsTotal); got > reqSeries+1 {
		t.Fatalf("requests_total series grew %d -> %d", reqSeries, got)
	}
	if got := testutil.CollectAndCount(httpInflight); got > inflightSeries+1 {
		t.Fatalf("inflight series grew %d -> %d", inflightSeries, got)
	}
}

func TestMetricsEndpoint_ExposesDriverAndHTTPMetrics(t *testing.T) {
	h := NewMux(driver.New([]driver.Client{driver.NewRecorder("r")}))
	_ = post(t, h, "/events/b", `{"field_b1":1,"field_b2":1}`)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", w.Code)
	}
	body := w.Body.Bytes()
	for _, name := range []string{"eventdriver_http_requests_total", "eventdriver_dispatch_events_total", "eventdriver_dispatch_deliveries_total"} {
		if !bytes.Contains(body, []byte(name)) {
			t.Fatalf("metric %s missing from /metrics", name)
		}
	}
}

func TestStatusFor_Default(t *testing.T) {
	if got := statusFor(bytes.ErrTooLarge); got != http.StatusInternalServerError {
		t.Fatalf("status=%d", got)
	}
}
