// Package history は完了記録の読み取り専用ビューを提供する。
// 保存された状態は持たず、読み取りのたびにtimerLogsから再計算する。
package history

import (
	"sort"
	"time"

	"github.com/hitoshi/timerman/internal/engine"
	"github.com/hitoshi/timerman/internal/model"
)

// DayGroup は同一暦日に完了した記録のグループ。
// Dateは閲覧者のローカルタイムゾーンでの "YYYY-MM-DD"。
type DayGroup struct {
	Date string
	Logs []model.TimerLog
}

// ExportSnapshot は共有・エクスポート用のスナップショット。
// 外部のエクスポート機構にそのまま渡せるJSONとして直列化される。
type ExportSnapshot struct {
	ExportDate time.Time   `json:"exportDate"`
	TimerLogs  []ExportLog `json:"timerLogs"`
}

// ExportLog はエクスポート文書内の1完了記録。
// フィールド名は共有先との互換のため固定されている。
type ExportLog struct {
	ID          string    `json:"id"`
	TimerID     string    `json:"timerId"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Duration    int       `json:"duration"`
	CompletedAt time.Time `json:"completedAt"`
}

// Service は完了記録の射影を計算する。
type Service struct {
	store *engine.Store
	clock func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store *engine.Store) *Service {
	return &Service{
		store: store,
		clock: time.Now,
	}
}

// SetClock はテスト用に時刻取得関数を差し替える。
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

// GroupedByDay は完了記録を完了した暦日（ローカルタイムゾーン）でグループ化して返す。
// グループは新しい日が先、グループ内は新しい完了が先に並ぶ。
// 射影は読み取りのたびに再計算され、タイムゾーン変更後は新しいゾーンで
// グループし直される。
func (s *Service) GroupedByDay() []DayGroup {
	logs := s.store.Snapshot().TimerLogs

	groups := make(map[string][]model.TimerLog)
	for _, l := range logs {
		day := l.CompletedAt.Local().Format("2006-01-02")
		groups[day] = append(groups[day], l)
	}

	days := make([]string, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	result := make([]DayGroup, 0, len(days))
	for _, day := range days {
		dayLogs := groups[day]
		sort.SliceStable(dayLogs, func(i, j int) bool {
			return dayLogs[i].CompletedAt.After(dayLogs[j].CompletedAt)
		})
		result = append(result, DayGroup{Date: day, Logs: dayLogs})
	}
	return result
}

// Export は現在の完了記録のエクスポート用スナップショットを返す。
func (s *Service) Export() ExportSnapshot {
	logs := s.store.Snapshot().TimerLogs

	exported := make([]ExportLog, len(logs))
	for i, l := range logs {
		exported[i] = ExportLog{
			ID:          l.ID,
			TimerID:     l.TimerID,
			Name:        l.Name,
			Category:    l.CategoryID,
			Duration:    l.Duration,
			CompletedAt: l.CompletedAt,
		}
	}

	return ExportSnapshot{
		ExportDate: s.clock(),
		TimerLogs:  exported,
	}
}
