package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestUpstreamMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewUpstreamMetrics(reg)
	m.Observe("GET /products", OutcomeSuccess, 120*time.Millisecond)
	m.Observe("GET /products", OutcomeServerError, 80*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	got, err := fetchCounterValue(mfs, "storefront_upstream_requests_total", map[string]string{"endpoint": "GET /products", "outcome": OutcomeServerError})
	if err != nil {
		t.Fatalf("fetch counter: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1 server error, got %f", got)
	}

	sum, err := fetchHistogramSum(mfs, "storefront_upstream_request_duration_seconds", map[string]string{"endpoint": "GET /products"})
	if err != nil {
		t.Fatalf("fetch duration: %v", err)
	}
	if sum < 0.19 {
		t.Fatalf("expected duration sum ~0.2, got %f", sum)
	}
}

func TestStoreMetricsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)
	m.Record("cart", "add", nil)
	m.Record("cart", "add", errors.New("boom"))
	m.Record("cart", "add", nil)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	ok, err := fetchCounterValue(mfs, "storefront_store_mutations_total", map[string]string{"store": "cart", "operation": "add", "outcome": OutcomeSuccess})
	if err != nil || ok != 2 {
		t.Fatalf("expected 2 successes, got %f err=%v", ok, err)
	}
	failed, err := fetchCounterValue(mfs, "storefront_store_mutations_total", map[string]string{"store": "cart", "operation": "add", "outcome": "failure"})
	if err != nil || failed != 1 {
		t.Fatalf("expected 1 failure, got %f err=%v", failed, err)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	NewUpstreamMetrics(nil).Observe("x", OutcomeSuccess, time.Second)
	NewStoreMetrics(nil).Record("wishlist", "toggle", nil)
	var m *StoreMetrics
	m.Record("wishlist", "toggle", nil)
}

func TestOutcomeForStatus(t *testing.T) {
	cases := map[int]string{
		0:                             OutcomeTransport,
		http.StatusOK:                 OutcomeSuccess,
		http.StatusNotFound:           OutcomeClientError,
		http.StatusServiceUnavailable: OutcomeServerError,
	}
	for status, want := range cases {
		if got := OutcomeForStatus(status); got != want {
			t.Fatalf("status %d: expected %s got %s", status, want, got)
		}
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
