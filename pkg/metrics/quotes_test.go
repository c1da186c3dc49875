package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestQuoteMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewQuoteMetrics(reg)

	metrics.IncTransition("finalized")
	metrics.IncTransition("finalized")
	metrics.AddOverbookWarnings(3)
	metrics.AddOverbookWarnings(0)
	metrics.IncRevenueEvent("revenue_recognized")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "quote_transitions_total", "transition", "finalized"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 2 {
		t.Fatalf("expected transitions=2, got %f", got)
	}

	if got, err := fetchPlainCounterValue(mfs, "quote_overbook_warnings_total"); err != nil {
		t.Fatalf("fetch warnings: %v", err)
	} else if got != 3 {
		t.Fatalf("expected warnings=3, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "revenue_events_total", "type", "revenue_recognized"); err != nil {
		t.Fatalf("fetch revenue events: %v", err)
	} else if got != 1 {
		t.Fatalf("expected events=1, got %f", got)
	}
}

func TestQuoteMetricsNilSafe(t *testing.T) {
	var metrics *QuoteMetrics
	metrics.IncTransition("paid")
	metrics.AddOverbookWarnings(1)
	metrics.IncRevenueEvent("revenue_reversed")

	empty := NewQuoteMetrics(nil)
	empty.IncTransition("paid")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchPlainCounterValue(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetCounter().GetValue(), nil
	}
	return 0, fmt.Errorf("metric %q has no samples", name)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
