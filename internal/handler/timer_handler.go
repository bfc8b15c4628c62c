// Package handler はHTTP APIのハンドラーを実装する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/timerman/internal/model"
)

// TimerServiceInterface はタイマーハンドラーが必要とするサービスインターフェース。
type TimerServiceInterface interface {
	// List は全タイマーを返す。
	List() []model.Timer
	// Get はIDでタイマーを取得する。
	Get(id string) (*model.Timer, error)
	// Create は新しいタイマーを作成する。
	Create(name, categoryID string, durationSeconds int, halfwayAlert bool) (*model.Timer, error)
	// Update はタイマーの名前とカテゴリを更新する。
	Update(id, name, categoryID string) (*model.Timer, error)
	// Remove はタイマーを削除する。
	Remove(id string) error
	// Start はタイマーを開始する。
	Start(id string) (*model.Timer, error)
	// Pause はタイマーを一時停止する。
	Pause(id string) (*model.Timer, error)
	// Reset はタイマーを初期状態に戻す。
	Reset(id string) (*model.Timer, error)
	// Complete はタイマーを手動で完了させる。
	Complete(id string) (*model.Timer, error)
	// SetHalfwayAlert は中間アラートの有効・無効を設定する。
	SetHalfwayAlert(id string, enabled bool) (*model.Timer, error)
}

// TimerHandler はタイマー管理のHTTPハンドラー。
type TimerHandler struct {
	service TimerServiceInterface
}

// NewTimerHandler はTimerHandlerを生成する。
func NewTimerHandler(service TimerServiceInterface) *TimerHandler {
	return &TimerHandler{service: service}
}

// createTimerRequest はタイマー作成リクエストのボディ。
type createTimerRequest struct {
	Name         string `json:"name"`
	CategoryID   string `json:"category_id"`
	Duration     int    `json:"duration"`
	HalfwayAlert bool   `json:"halfway_alert"`
}

// updateTimerRequest はタイマー更新リクエストのボディ。
// 継続時間と進行状態は更新対象外。
type updateTimerRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

// halfwayAlertRequest は中間アラート設定リクエストのボディ。
type halfwayAlertRequest struct {
	Enabled bool `json:"enabled"`
}

// timerResponse はタイマー情報のAPIレスポンス。
type timerResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	CategoryID            string    `json:"category_id"`
	Duration              int       `json:"duration"`
	RemainingTime         int       `json:"remaining_time"`
	Status                string    `json:"status"`
	HalfwayAlert          bool      `json:"halfway_alert"`
	HalfwayAlertTriggered bool      `json:"halfway_alert_triggered"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListTimers は全タイマーの一覧を返す。
// GET /api/timers
func (h *TimerHandler) ListTimers(w http.ResponseWriter, r *http.Request) {
	timers := h.service.List()

	results := make([]timerResponse, len(timers))
	for i, t := range timers {
		results[i] = toTimerResponse(&t)
	}

	writeJSON(w, http.StatusOK, results)
}

// GetTimer はタイマー詳細を取得する。
// GET /api/timers/:id
func (h *TimerHandler) GetTimer(w http.ResponseWriter, r *http.Request) {
	timerID := chi.URLParam(r, "id")

	timer, err := h.service.Get(timerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimerResponse(timer))
}

// CreateTimer はタイマーを新規作成する。
// POST /api/timers
func (h *TimerHandler) CreateTimer(w http.ResponseWriter, r *http.Request) {
	var req createTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	timer, err := h.service.Create(req.Name, req.CategoryID, req.Duration, req.HalfwayAlert)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTimerResponse(timer))
}

// UpdateTimer はタイマーの名前とカテゴリを更新する。
// PATCH /api/timers/:id
func (h *TimerHandler) UpdateTimer(w http.ResponseWriter, r *http.Request) {
	timerID := chi.URLParam(r, "id")

	var req updateTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	timer, err := h.service.Update(timerID, req.Name, req.CategoryID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimerResponse(timer))
}

// DeleteTimer はタイマーを削除する。
// DELETE /api/timers/:id
func (h *TimerHandler) DeleteTimer(w http.ResponseWriter, r *http.Request) {
	timerID := chi.URLParam(r, "id")

	if err := h.service.Remove(timerID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StartTimer はタイマーのカウントダウンを開始する。
// POST /api/timers/:id/start
func (h *TimerHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Start)
}

// PauseTimer はタイマーを一時停止する。
// POST /api/timers/:id/pause
func (h *TimerHandler) PauseTimer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Pause)
}

// ResetTimer はタイマーを初期状態に戻す。
// POST /api/timers/:id/reset
func (h *TimerHandler) ResetTimer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reset)
}

// CompleteTimer はタイマーを手動で完了させ、完了記録を残す。
// POST /api/timers/:id/complete
func (h *TimerHandler) CompleteTimer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete)
}

// UpdateHalfwayAlert は中間アラートの有効・無効を設定する。
// PUT /api/timers/:id/halfway-alert
func (h *TimerHandler) UpdateHalfwayAlert(w http.ResponseWriter, r *http.Request) {
	timerID := chi.URLParam(r, "id")

	var req halfwayAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	timer, err := h.service.SetHalfwayAlert(timerID, req.Enabled)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimerResponse(timer))
}

// transition は開始・一時停止・リセット・完了の共通処理。
func (h *TimerHandler) transition(w http.ResponseWriter, r *http.Request, op func(id string) (*model.Timer, error)) {
	timerID := chi.URLParam(r, "id")

	timer, err := op(timerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimerResponse(timer))
}

// toTimerResponse はドメインのTimerをAPIレスポンス型に変換する。
func toTimerResponse(t *model.Timer) timerResponse {
	return timerResponse{
		ID:                    t.ID,
		Name:                  t.Name,
		CategoryID:            t.CategoryID,
		Duration:              t.Duration,
		RemainingTime:         t.RemainingTime,
		Status:                string(t.Status),
		HalfwayAlert:          t.HalfwayAlert,
		HalfwayAlertTriggered: t.HalfwayAlertTriggered,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// invalidRequestBodyError はリクエストボディ解析失敗のエラーを返す。
func invalidRequestBodyError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmptyName, model.ErrCodeInvalidDuration:
		return http.StatusBadRequest
	case model.ErrCodeTimerNotFound, model.ErrCodeCategoryNotFound:
		return http.StatusNotFound
	case model.ErrCodeCategoryProtected:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
