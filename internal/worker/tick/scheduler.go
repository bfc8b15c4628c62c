// Package tick はタイマーを1秒刻みで進行させるスケジューラを提供する。
// タイマーごとに独立したタイマーを張るのではなく、単一のティッカーで
// 全runningタイマーを毎秒走査するポーリング方式を取る。タイマーの追加・
// 削除に伴う登録解除の管理が不要になり、全タイマーが秒単位で同期する。
package tick

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/timerman/internal/engine"
	"github.com/hitoshi/timerman/internal/model"
	"github.com/hitoshi/timerman/internal/timeutil"
)

// MetricsCollector はスケジューラが記録するメトリクスのインターフェース。
type MetricsCollector interface {
	RecordTick()
	RecordTickCycleDuration(duration time.Duration)
	RecordTimerCompleted()
	RecordHalfwayAlert()
	SetRunningTimers(count int)
}

// Scheduler は固定間隔で全runningタイマーを進行させる。
// 永続化は一切行わない。すべての遷移はStoreのReducerを通り、
// 保存はStoreの変更通知を購読するsaver側の責務となる。
type Scheduler struct {
	store   *engine.Store
	logger  *slog.Logger
	metrics MetricsCollector
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewScheduler(store *engine.Store, logger *slog.Logger, metrics MetricsCollector) *Scheduler {
	return &Scheduler{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続し、キャンセル後は
// 新たなtickを配送しない。再起動は新しいStart呼び出しで行い、
// それぞれのStartが独立した間隔アンカーを持つ。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("tickスケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tickスケジューラを停止しました")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce は1回のtickサイクルを実行する。
// サイクル開始時点のスナップショットに含まれる各runningタイマーに対し、
// 固定の順序で評価する:
//  1. 残り1秒以下なら完了パス（ログ追記 + completed遷移）を呼び、
//     そのタイマーの評価を終える
//  2. それ以外はTickTimerで1秒減算する
//  3. 減算したタイマーについて、中間アラートが有効かつ未発火で、減算後の
//     残り秒数が半分以下に達していればTriggerHalfwayAlertを適用する
//
// この順序を入れ替えてはならない。0に達したタイマーは減算ではなく完了する
// 必要があり、中間判定は完了判定と同じサイクル開始時点の値から導出する。
// runningタイマーが1つもない場合は何もしない。
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()

	state := s.store.Snapshot()
	running := 0

	for _, t := range state.Timers {
		if t.Status != model.StatusRunning {
			continue
		}
		running++

		pre := t.RemainingTime
		if pre <= 1 {
			if _, ok := s.store.CompleteTimer(t.ID); ok {
				s.logger.Info("タイマーが完了しました",
					slog.String("timer_id", t.ID),
					slog.String("timer_name", t.Name),
					slog.String("duration", timeutil.FormatSeconds(t.Duration)),
				)
				if s.metrics != nil {
					s.metrics.RecordTimerCompleted()
				}
			}
			// 完了tickでは中間アラートを発火させない
			continue
		}
		s.store.Dispatch(engine.TickTimer{ID: t.ID})

		// 中間アラート判定。このサイクルの減算後の残り秒数が
		// duration/2以下に初めて達したtickで発火する。
		// halfwayAlertTriggeredガードが唯一の単発化機構であり、
		// 以降のtickでの再発火を防ぐ。
		if t.HalfwayAlert && !t.HalfwayAlertTriggered {
			rem := pre - 1
			if rem <= t.Duration/2 {
				s.store.Dispatch(engine.TriggerHalfwayAlert{ID: t.ID})
				s.logger.Info("中間アラートが発火しました",
					slog.String("timer_id", t.ID),
					slog.String("timer_name", t.Name),
					slog.String("remaining", timeutil.FormatSeconds(rem)),
				)
				if s.metrics != nil {
					s.metrics.RecordHalfwayAlert()
				}
			}
		}
	}

	if s.metrics != nil {
		s.metrics.RecordTick()
		s.metrics.RecordTickCycleDuration(time.Since(start))
		s.metrics.SetRunningTimers(running)
	}
}
