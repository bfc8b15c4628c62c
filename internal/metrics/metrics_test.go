package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue はレジストリから指定名のカウンタ値を取り出す。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("%s metric not found", name)
	return 0
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordTick_IncrementsCounter はtickカウンタが増加することを検証する。
func TestRecordTick_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTick()
	c.RecordTick()

	if val := counterValue(t, reg, "timerman_ticks_total"); val != 2 {
		t.Errorf("ticks_total = %v, want 2", val)
	}
}

// TestRecordTimerCompleted_IncrementsCounter はタイマー完了カウンタが増加することを検証する。
func TestRecordTimerCompleted_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTimerCompleted()
	c.RecordTimerCompleted()
	c.RecordTimerCompleted()

	if val := counterValue(t, reg, "timerman_timers_completed_total"); val != 3 {
		t.Errorf("timers_completed_total = %v, want 3", val)
	}
}

// TestRecordHalfwayAlert_IncrementsCounter は中間アラートカウンタが増加することを検証する。
func TestRecordHalfwayAlert_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHalfwayAlert()

	if val := counterValue(t, reg, "timerman_halfway_alerts_total"); val != 1 {
		t.Errorf("halfway_alerts_total = %v, want 1", val)
	}
}

// TestRecordSaveResults_IncrementCounters は保存成功・失敗カウンタが独立に増加することを検証する。
func TestRecordSaveResults_IncrementCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSaveSuccess()
	c.RecordSaveSuccess()
	c.RecordSaveFailure()

	if val := counterValue(t, reg, "timerman_save_success_total"); val != 2 {
		t.Errorf("save_success_total = %v, want 2", val)
	}
	if val := counterValue(t, reg, "timerman_save_fail_total"); val != 1 {
		t.Errorf("save_fail_total = %v, want 1", val)
	}
}

// TestRecordTickCycleDuration_ObservesHistogram はtickサイクル時間のヒストグラムに値が記録されることを検証する。
func TestRecordTickCycleDuration_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTickCycleDuration(100 * time.Millisecond)
	c.RecordTickCycleDuration(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "timerman_tick_cycle_duration_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("timerman_tick_cycle_duration_seconds metric not found")
	}
}

// TestSetRunningTimers_SetsGauge はrunningタイマー数のゲージが最新値で上書きされることを検証する。
func TestSetRunningTimers_SetsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetRunningTimers(5)
	c.SetRunningTimers(2)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "timerman_running_timers" {
			found = true
			val := mf.GetMetric()[0].GetGauge().GetValue()
			if val != 2 {
				t.Errorf("running_timers = %v, want 2", val)
			}
		}
	}
	if !found {
		t.Error("timerman_running_timers metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat はメトリクスエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTick()
	c.RecordTimerCompleted()
	c.RecordSaveSuccess()
	c.RecordTickCycleDuration(500 * time.Millisecond)
	c.SetRunningTimers(1)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"timerman_ticks_total",
		"timerman_timers_completed_total",
		"timerman_save_success_total",
		"timerman_tick_cycle_duration_seconds",
		"timerman_running_timers",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordTick()
	c2.RecordTick()
	c2.RecordTick()

	if val := counterValue(t, reg1, "timerman_ticks_total"); val != 1 {
		t.Errorf("reg1 ticks_total = %v, want 1", val)
	}
	if val := counterValue(t, reg2, "timerman_ticks_total"); val != 2 {
		t.Errorf("reg2 ticks_total = %v, want 2", val)
	}
}
