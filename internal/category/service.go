// Package category はカテゴリ操作の境界サービスを提供する。
// デフォルトカテゴリの削除保護はReducerではなくここで強制する。
package category

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/timerman/internal/engine"
	"github.com/hitoshi/timerman/internal/model"
)

// Service はカテゴリの管理操作とカテゴリ単位の一括操作を提供する。
type Service struct {
	store *engine.Store
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store *engine.Store) *Service {
	return &Service{store: store}
}

// List は全カテゴリを返す。
func (s *Service) List() []model.Category {
	return s.store.Snapshot().Categories
}

// Create は新しいカテゴリを作成する。名前が空の場合はバリデーションエラーを返す。
// 新しいカテゴリは展開状態で末尾に追加される。
func (s *Service) Create(name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewEmptyNameError()
	}

	snapshot := s.store.Snapshot()
	c := model.Category{
		ID:         uuid.NewString(),
		Name:       name,
		IsExpanded: true,
		Position:   len(snapshot.Categories),
	}

	state := s.store.Dispatch(engine.AddCategory{Category: c})
	return findCategory(state, c.ID), nil
}

// Rename はカテゴリの名前を変更する。
func (s *Service) Rename(id, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewEmptyNameError()
	}

	current := findCategory(s.store.Snapshot(), id)
	if current == nil {
		return nil, model.NewCategoryNotFoundError(id)
	}

	updated := *current
	updated.Name = name
	state := s.store.Dispatch(engine.UpdateCategory{Category: updated})
	return findCategory(state, id), nil
}

// Remove はカテゴリを削除する。参照していたタイマーはデフォルトカテゴリへ
// 付け替えられ、タイマー自体が削除されることはない。
// デフォルトカテゴリは削除できない。
func (s *Service) Remove(id string) error {
	if id == model.DefaultCategoryID {
		return model.NewCategoryProtectedError()
	}
	if findCategory(s.store.Snapshot(), id) == nil {
		return model.NewCategoryNotFoundError(id)
	}
	s.store.Dispatch(engine.RemoveCategory{ID: id})
	return nil
}

// ToggleExpanded はカテゴリの展開表示フラグを反転する。
func (s *Service) ToggleExpanded(id string) (*model.Category, error) {
	if findCategory(s.store.Snapshot(), id) == nil {
		return nil, model.NewCategoryNotFoundError(id)
	}
	state := s.store.Dispatch(engine.ToggleCategoryExpanded{ID: id})
	return findCategory(state, id), nil
}

// StartAll はカテゴリ内のcompleted以外の全タイマーを開始する。
// 完了済みタイマーは対象外（リセット後にのみ再開できる）。
func (s *Service) StartAll(id string) error {
	return s.bulk(id, engine.StartCategoryTimers{CategoryID: id})
}

// PauseAll はカテゴリ内のrunningのタイマーのみを一時停止する。
func (s *Service) PauseAll(id string) error {
	return s.bulk(id, engine.PauseCategoryTimers{CategoryID: id})
}

// ResetAll はカテゴリ内の全タイマーを状態によらずidleに戻す。
func (s *Service) ResetAll(id string) error {
	return s.bulk(id, engine.ResetCategoryTimers{CategoryID: id})
}

// bulk はカテゴリの存在確認のうえで一括アクションを適用する。
func (s *Service) bulk(id string, action engine.Action) error {
	if findCategory(s.store.Snapshot(), id) == nil {
		return model.NewCategoryNotFoundError(id)
	}
	s.store.Dispatch(action)
	return nil
}

// findCategory はStateから指定IDのカテゴリのコピーを探す。
func findCategory(state model.State, id string) *model.Category {
	for _, c := range state.Categories {
		if c.ID == id {
			found := c
			return &found
		}
	}
	return nil
}
