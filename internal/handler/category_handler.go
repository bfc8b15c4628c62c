package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/timerman/internal/model"
)

// CategoryServiceInterface はカテゴリハンドラーが必要とするサービスインターフェース。
type CategoryServiceInterface interface {
	// List は全カテゴリを返す。
	List() []model.Category
	// Create は新しいカテゴリを作成する。
	Create(name string) (*model.Category, error)
	// Rename はカテゴリ名を変更する。
	Rename(id, name string) (*model.Category, error)
	// Remove はカテゴリを削除し、所属タイマーをデフォルトカテゴリに退避する。
	Remove(id string) error
	// ToggleExpanded は展開状態を反転する。
	ToggleExpanded(id string) (*model.Category, error)
	// StartAll はカテゴリ内の開始可能なタイマーをまとめて開始する。
	StartAll(id string) error
	// PauseAll はカテゴリ内の実行中タイマーをまとめて一時停止する。
	PauseAll(id string) error
	// ResetAll はカテゴリ内の全タイマーをまとめてリセットする。
	ResetAll(id string) error
}

// CategoryHandler はカテゴリ管理のHTTPハンドラー。
type CategoryHandler struct {
	service CategoryServiceInterface
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// categoryRequest はカテゴリ作成・更新リクエストのボディ。
type categoryRequest struct {
	Name string `json:"name"`
}

// categoryResponse はカテゴリ情報のAPIレスポンス。
type categoryResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsExpanded bool   `json:"is_expanded"`
	Position   int    `json:"position"`
}

// ListCategories はカテゴリ一覧を返す。
// GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.service.List()

	results := make([]categoryResponse, len(categories))
	for i, c := range categories {
		results[i] = toCategoryResponse(&c)
	}

	writeJSON(w, http.StatusOK, results)
}

// CreateCategory はカテゴリを新規作成する。
// POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	category, err := h.service.Create(req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory はカテゴリ名を変更する。
// PATCH /api/categories/:id
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestBodyError())
		return
	}

	category, err := h.service.Rename(categoryID, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory はカテゴリを削除する。
// DELETE /api/categories/:id
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	if err := h.service.Remove(categoryID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleExpanded はカテゴリの展開状態を反転する。
// POST /api/categories/:id/toggle
func (h *CategoryHandler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")

	category, err := h.service.ToggleExpanded(categoryID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

// StartCategoryTimers はカテゴリ内のタイマーを一括開始する。
// POST /api/categories/:id/start
func (h *CategoryHandler) StartCategoryTimers(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.service.StartAll)
}

// PauseCategoryTimers はカテゴリ内のタイマーを一括一時停止する。
// POST /api/categories/:id/pause
func (h *CategoryHandler) PauseCategoryTimers(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.service.PauseAll)
}

// ResetCategoryTimers はカテゴリ内のタイマーを一括リセットする。
// POST /api/categories/:id/reset
func (h *CategoryHandler) ResetCategoryTimers(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.service.ResetAll)
}

// bulk はカテゴリ単位の一括操作の共通処理。
func (h *CategoryHandler) bulk(w http.ResponseWriter, r *http.Request, op func(id string) error) {
	categoryID := chi.URLParam(r, "id")

	if err := op(categoryID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toCategoryResponse はドメインのCategoryをAPIレスポンス型に変換する。
func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:         c.ID,
		Name:       c.Name,
		IsExpanded: c.IsExpanded,
		Position:   c.Position,
	}
}
