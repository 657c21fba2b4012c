package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func TestCronJobMetricsRecordsRunsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	metrics.now = func() time.Time { return time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC) }
	job := "installments_overdue"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	runs := findMetricFamily(mfs, "cron_job_runs_total")
	if runs == nil {
		t.Fatalf("runs metric missing")
	}
	byResult := map[string]float64{}
	for _, m := range runs.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "result" {
				byResult[l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	if byResult["success"] != 2 || byResult["failure"] != 1 {
		t.Fatalf("unexpected run counts %v", byResult)
	}

	last := findMetricFamily(mfs, "cron_job_last_success_timestamp_seconds")
	if last == nil || last.GetMetric()[0].GetGauge().GetValue() != 1740794400 {
		t.Fatalf("unexpected last success gauge %v", last)
	}

	if got, err := fetchHistogramSum(mfs, "cron_job_duration_seconds", "job", job); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCronJobMetricsLabelsEmptyJobName(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCronJobMetrics(reg).IncFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cron_job_runs_total", "job", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unknown job label, got %f (%v)", got, err)
	}
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

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
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

func TestContractMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewContractMetrics(reg)
	m.ObserveContract("credit", decimal.NewFromInt(5000))
	m.ObserveContract("credit", decimal.NewFromInt(-1))
	m.IncInstallmentPaid()
	m.AddOverdue(3)
	m.AddOverdue(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "contracts_created_total", "payment_mode", "credit"); err != nil || got != 2 {
		t.Fatalf("expected 2 credit contracts, got %f (%v)", got, err)
	}
	financed := findMetricFamily(mfs, "contracts_financed_value_total")
	if financed == nil || financed.GetMetric()[0].GetCounter().GetValue() != 5000 {
		t.Fatalf("unexpected financed total")
	}
	overdue := findMetricFamily(mfs, "installments_marked_overdue_total")
	if overdue == nil || overdue.GetMetric()[0].GetCounter().GetValue() != 3 {
		t.Fatalf("unexpected overdue total")
	}
}

func TestOutboxMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.IncPublished("contract_created")
	m.IncFailed("contract_created")
	m.IncDeadLettered("installment_paid", "max_attempts")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "outbox_events_published_total", "event_type", "contract_created"); err != nil || got != 1 {
		t.Fatalf("expected one publish, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "outbox_events_dead_lettered_total", "reason", "max_attempts"); err != nil || got != 1 {
		t.Fatalf("expected one dead letter, got %f (%v)", got, err)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewContractMetrics(nil).ObserveContract("installment", decimal.NewFromInt(1))
	NewOutboxMetrics(nil).IncPublished("x")
	var m *ContractMetrics
	m.IncInstallmentPaid()
}
