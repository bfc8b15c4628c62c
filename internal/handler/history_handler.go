package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/timerman/internal/history"
)

// HistoryServiceInterface は履歴ハンドラーが必要とするサービスインターフェース。
type HistoryServiceInterface interface {
	// GroupedByDay は完了記録を暦日ごとにグループ化して返す。
	GroupedByDay() []history.DayGroup
	// Export は共有用スナップショットを構築する。
	Export() history.ExportSnapshot
}

// HistoryHandler は完了履歴のHTTPハンドラー。
type HistoryHandler struct {
	service HistoryServiceInterface
}

// NewHistoryHandler はHistoryHandlerを生成する。
func NewHistoryHandler(service HistoryServiceInterface) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// timerLogResponse は完了記録のAPIレスポンス。
type timerLogResponse struct {
	ID          string    `json:"id"`
	TimerID     string    `json:"timer_id"`
	Name        string    `json:"name"`
	CategoryID  string    `json:"category_id"`
	Duration    int       `json:"duration"`
	CompletedAt time.Time `json:"completed_at"`
}

// dayGroupResponse は暦日ごとの完了記録グループのAPIレスポンス。
type dayGroupResponse struct {
	Date string             `json:"date"`
	Logs []timerLogResponse `json:"logs"`
}

// ListHistory は完了記録を日付ごとにグループ化して返す。
// GET /api/history
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	groups := h.service.GroupedByDay()

	results := make([]dayGroupResponse, len(groups))
	for i, g := range groups {
		logs := make([]timerLogResponse, len(g.Logs))
		for j, l := range g.Logs {
			logs[j] = timerLogResponse{
				ID:          l.ID,
				TimerID:     l.TimerID,
				Name:        l.Name,
				CategoryID:  l.CategoryID,
				Duration:    l.Duration,
				CompletedAt: l.CompletedAt,
			}
		}
		results[i] = dayGroupResponse{Date: g.Date, Logs: logs}
	}

	writeJSON(w, http.StatusOK, results)
}

// ExportHistory は共有用スナップショットを返す。
// スナップショットのJSONフィールド名は共有先との互換のため
// service層の定義をそのまま使用する。
// GET /api/history/export
func (h *HistoryHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Export())
}
