package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/timerman/internal/history"
	"github.com/hitoshi/timerman/internal/model"
)

// --- モック定義 ---

// mockHistoryService はHistoryServiceInterfaceのモック実装。
type mockHistoryService struct {
	groupedByDayFn func() []history.DayGroup
	exportFn       func() history.ExportSnapshot
}

func (m *mockHistoryService) GroupedByDay() []history.DayGroup {
	if m.groupedByDayFn != nil {
		return m.groupedByDayFn()
	}
	return nil
}

func (m *mockHistoryService) Export() history.ExportSnapshot {
	if m.exportFn != nil {
		return m.exportFn()
	}
	return history.ExportSnapshot{}
}

// --- GET /api/history テスト ---

func TestHistoryHandler_ListHistory_GroupsByDay(t *testing.T) {
	completed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	svc := &mockHistoryService{
		groupedByDayFn: func() []history.DayGroup {
			return []history.DayGroup{
				{
					Date: "2026-03-02",
					Logs: []model.TimerLog{
						{
							ID:          "log-1",
							TimerID:     "timer-1",
							Name:        "朝の運動",
							CategoryID:  "workout",
							Duration:    600,
							CompletedAt: completed,
						},
					},
				},
				{
					Date: "2026-03-01",
					Logs: []model.TimerLog{
						{ID: "log-0", TimerID: "timer-2", Name: "読書", CategoryID: "study", Duration: 1800, CompletedAt: completed.AddDate(0, 0, -1)},
					},
				},
			}
		},
	}
	h := NewHistoryHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()

	h.ListHistory(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body []dayGroupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("len(body) = %d, want 2", len(body))
	}
	if body[0].Date != "2026-03-02" {
		t.Errorf("date = %q, want %q", body[0].Date, "2026-03-02")
	}
	if len(body[0].Logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(body[0].Logs))
	}
	if body[0].Logs[0].TimerID != "timer-1" {
		t.Errorf("timer_id = %q, want %q", body[0].Logs[0].TimerID, "timer-1")
	}
}

func TestHistoryHandler_ListHistory_Empty(t *testing.T) {
	h := NewHistoryHandler(&mockHistoryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()

	h.ListHistory(w, req)

	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want %q", got, "[]\n")
	}
}

// --- GET /api/history/export テスト ---

func TestHistoryHandler_ExportHistory_UsesFixedFieldNames(t *testing.T) {
	exportedAt := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc := &mockHistoryService{
		exportFn: func() history.ExportSnapshot {
			return history.ExportSnapshot{
				ExportDate: exportedAt,
				TimerLogs: []history.ExportLog{
					{
						ID:          "log-1",
						TimerID:     "timer-1",
						Name:        "朝の運動",
						Category:    "Workout",
						Duration:    600,
						CompletedAt: exportedAt,
					},
				},
			}
		},
	}
	h := NewHistoryHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history/export", nil)
	w := httptest.NewRecorder()

	h.ExportHistory(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// エクスポート文書は共有先との互換のためキャメルケースのキーを使用する
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if _, ok := raw["exportDate"]; !ok {
		t.Error("expected 'exportDate' key in export document")
	}
	var logs []map[string]json.RawMessage
	if err := json.Unmarshal(raw["timerLogs"], &logs); err != nil {
		t.Fatalf("failed to decode timerLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("len(timerLogs) = %d, want 1", len(logs))
	}
	for _, key := range []string{"id", "timerId", "name", "category", "duration", "completedAt"} {
		if _, ok := logs[0][key]; !ok {
			t.Errorf("expected %q key in export log", key)
		}
	}
}
