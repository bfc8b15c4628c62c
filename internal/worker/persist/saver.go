// Package persist は状態変更に追従するベストエフォートの保存処理を提供する。
// 保存はtick周期をブロックしてはならないため、変更通知を受けてから
// 専用ゴルーチンが非同期に書き込む。メモリ上のStateとディスク上のStateの
// 間の結果整合は許容する（last write wins）。
package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/timerman/internal/model"
	"github.com/hitoshi/timerman/internal/repository"
)

// MetricsCollector はsaverが記録するメトリクスのインターフェース。
type MetricsCollector interface {
	RecordSaveSuccess()
	RecordSaveFailure()
}

// Saver はStoreの変更通知を受けて3コレクションを永続化する。
// 通知はバッファ1のチャネルで合流させ、保存中に届いた複数の変更は
// 最新のStateによる1回の保存にまとめる。保存失敗はログとメトリクスに
// 記録するのみで、次の状態変更で自然に再試行される。
type Saver struct {
	repo        repository.StateRepository
	logger      *slog.Logger
	metrics     MetricsCollector
	saveTimeout time.Duration

	pending chan model.State
}

// NewSaver はSaverの新しいインスタンスを生成する。
// saveTimeoutが0以下の場合はデフォルト値5秒を使用する。
// metricsはnilでもよい。
func NewSaver(repo repository.StateRepository, logger *slog.Logger, metrics MetricsCollector, saveTimeout time.Duration) *Saver {
	if saveTimeout <= 0 {
		saveTimeout = 5 * time.Second
	}
	return &Saver{
		repo:        repo,
		logger:      logger,
		metrics:     metrics,
		saveTimeout: saveTimeout,
		pending:     make(chan model.State, 1),
	}
}

// Notify はStoreのリスナーとして登録する通知関数。
// ブロックせず、保存待ちのStateを常に最新のものへ置き換える。
func (s *Saver) Notify(state model.State) {
	for {
		select {
		case s.pending <- state:
			return
		default:
			// 古い保存待ちを捨てて最新に差し替える
			select {
			case <-s.pending:
			default:
			}
		}
	}
}

// Run は保存ループを実行する。コンテキストがキャンセルされるまで
// 通知を待ち、届いたStateを保存する。終了前に保存待ちが残っていれば
// 最後に1回フラッシュする。
func (s *Saver) Run(ctx context.Context) {
	s.logger.Info("保存ワーカーを開始しました",
		slog.Duration("save_timeout", s.saveTimeout),
	)

	for {
		select {
		case <-ctx.Done():
			// シャットダウン時の最終フラッシュ
			select {
			case state := <-s.pending:
				s.save(context.Background(), state)
			default:
			}
			s.logger.Info("保存ワーカーを停止しました")
			return
		case state := <-s.pending:
			s.save(ctx, state)
		}
	}
}

// SaveNow は現在のStateを同期的に保存する。起動時のシードに使用する。
func (s *Saver) SaveNow(ctx context.Context, state model.State) {
	s.save(ctx, state)
}

// save は3コレクションをそれぞれ独立に書き込む。
// 1つの書き込みの失敗は他のコレクションを壊さない（アトミック性は仮定しない）。
func (s *Saver) save(ctx context.Context, state model.State) {
	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	start := time.Now()
	failed := false

	if err := s.repo.SaveTimers(ctx, state.Timers); err != nil {
		failed = true
		s.logger.Error("タイマーの保存に失敗しました",
			slog.String("error", err.Error()),
		)
	}
	if err := s.repo.SaveCategories(ctx, state.Categories); err != nil {
		failed = true
		s.logger.Error("カテゴリの保存に失敗しました",
			slog.String("error", err.Error()),
		)
	}
	if err := s.repo.SaveTimerLogs(ctx, state.TimerLogs); err != nil {
		failed = true
		s.logger.Error("完了記録の保存に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	if failed {
		if s.metrics != nil {
			s.metrics.RecordSaveFailure()
		}
		return
	}

	if s.metrics != nil {
		s.metrics.RecordSaveSuccess()
	}
	s.logger.Debug("状態を保存しました",
		slog.Int("timer_count", len(state.Timers)),
		slog.Int("category_count", len(state.Categories)),
		slog.Int("log_count", len(state.TimerLogs)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
}
