// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// tickスケジューラと保存ワーカーのMetricsCollectorインターフェースを満たす。
type Collector struct {
	ticks             prometheus.Counter
	tickCycleDuration prometheus.Histogram
	timersCompleted   prometheus.Counter
	halfwayAlerts     prometheus.Counter
	saveSuccess       prometheus.Counter
	saveFail          prometheus.Counter
	runningTimers     prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timerman_ticks_total",
			Help: "実行されたtickサイクルの合計数",
		}),
		tickCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timerman_tick_cycle_duration_seconds",
			Help:    "1tickサイクルの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		timersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timerman_timers_completed_total",
			Help: "完了したタイマーの合計数",
		}),
		halfwayAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timerman_halfway_alerts_total",
			Help: "発火した中間アラートの合計数",
		}),
		saveSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timerman_save_success_total",
			Help: "状態保存成功の合計数",
		}),
		saveFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timerman_save_fail_total",
			Help: "状態保存失敗の合計数",
		}),
		runningTimers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timerman_running_timers",
			Help: "現在runningのタイマー数",
		}),
	}

	reg.MustRegister(
		c.ticks,
		c.tickCycleDuration,
		c.timersCompleted,
		c.halfwayAlerts,
		c.saveSuccess,
		c.saveFail,
		c.runningTimers,
	)

	return c
}

// RecordTick はtickサイクルの実行を記録する。
func (c *Collector) RecordTick() {
	c.ticks.Inc()
}

// RecordTickCycleDuration はtickサイクルの処理時間を記録する。
func (c *Collector) RecordTickCycleDuration(duration time.Duration) {
	c.tickCycleDuration.Observe(duration.Seconds())
}

// RecordTimerCompleted はタイマー完了を記録する。
func (c *Collector) RecordTimerCompleted() {
	c.timersCompleted.Inc()
}

// RecordHalfwayAlert は中間アラートの発火を記録する。
func (c *Collector) RecordHalfwayAlert() {
	c.halfwayAlerts.Inc()
}

// RecordSaveSuccess は状態保存の成功を記録する。
func (c *Collector) RecordSaveSuccess() {
	c.saveSuccess.Inc()
}

// RecordSaveFailure は状態保存の失敗を記録する。
func (c *Collector) RecordSaveFailure() {
	c.saveFail.Inc()
}

// SetRunningTimers は現在のrunningタイマー数を記録する。
func (c *Collector) SetRunningTimers(count int) {
	c.runningTimers.Set(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
