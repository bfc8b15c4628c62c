// Package timer はタイマー操作の境界サービスを提供する。
// Reducerは一切のバリデーションを行わないため、名前や秒数の検証は
// アクションを構築する前にこのサービスで行う。
package timer

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/timerman/internal/engine"
	"github.com/hitoshi/timerman/internal/model"
)

// Service はタイマーのライフサイクル操作を提供する。
type Service struct {
	store *engine.Store
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store *engine.Store) *Service {
	return &Service{store: store}
}

// List は全タイマーを返す。
func (s *Service) List() []model.Timer {
	return s.store.Snapshot().Timers
}

// Get は指定IDのタイマーを返す。見つからない場合はAPIErrorを返す。
func (s *Service) Get(id string) (*model.Timer, error) {
	if t := findTimer(s.store.Snapshot(), id); t != nil {
		return t, nil
	}
	return nil, model.NewTimerNotFoundError(id)
}

// Create は新しいタイマーを作成する。
// 名前が空、秒数が正でない、カテゴリが存在しない場合はバリデーションエラーを返す。
// 作成されたタイマーはidle状態で、remainingTimeはdurationに等しい。
func (s *Service) Create(name, categoryID string, durationSeconds int, halfwayAlert bool) (*model.Timer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewEmptyNameError()
	}
	if durationSeconds <= 0 {
		return nil, model.NewInvalidDurationError(durationSeconds)
	}
	if categoryID == "" {
		categoryID = model.DefaultCategoryID
	}
	if findCategory(s.store.Snapshot(), categoryID) == nil {
		return nil, model.NewCategoryNotFoundError(categoryID)
	}

	now := time.Now()
	t := model.Timer{
		ID:            uuid.NewString(),
		Name:          name,
		CategoryID:    categoryID,
		Duration:      durationSeconds,
		RemainingTime: durationSeconds,
		Status:        model.StatusIdle,
		HalfwayAlert:  halfwayAlert,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	state := s.store.Dispatch(engine.AddTimer{Timer: t})
	return findTimer(state, t.ID), nil
}

// Update はタイマーの名前とカテゴリを変更する。
// duration・status・remainingTimeは変更しない。
func (s *Service) Update(id, name, categoryID string) (*model.Timer, error) {
	current := findTimer(s.store.Snapshot(), id)
	if current == nil {
		return nil, model.NewTimerNotFoundError(id)
	}

	updated := *current
	if name != "" {
		updated.Name = strings.TrimSpace(name)
		if updated.Name == "" {
			return nil, model.NewEmptyNameError()
		}
	}
	if categoryID != "" {
		if findCategory(s.store.Snapshot(), categoryID) == nil {
			return nil, model.NewCategoryNotFoundError(categoryID)
		}
		updated.CategoryID = categoryID
	}

	state := s.store.Dispatch(engine.UpdateTimer{Timer: updated})
	return findTimer(state, id), nil
}

// Remove はタイマーを削除する。
func (s *Service) Remove(id string) error {
	if findTimer(s.store.Snapshot(), id) == nil {
		return model.NewTimerNotFoundError(id)
	}
	s.store.Dispatch(engine.RemoveTimer{ID: id})
	return nil
}

// Start はタイマーをrunningに遷移させる。
// idle/paused以外からの開始はReducerのマッチングルールによりno-opとなる。
func (s *Service) Start(id string) (*model.Timer, error) {
	return s.transition(id, engine.StartTimer{ID: id})
}

// Pause はrunningのタイマーをpausedに遷移させる。
func (s *Service) Pause(id string) (*model.Timer, error) {
	return s.transition(id, engine.PauseTimer{ID: id})
}

// Reset はタイマーを状態によらずidleに戻す。冪等。
func (s *Service) Reset(id string) (*model.Timer, error) {
	return s.transition(id, engine.ResetTimer{ID: id})
}

// Complete は外部完了パスを実行する。
// 完了記録の追記とcompleted遷移が原子的に観測される形で適用される。
func (s *Service) Complete(id string) (*model.Timer, error) {
	state, ok := s.store.CompleteTimer(id)
	if !ok {
		return nil, model.NewTimerNotFoundError(id)
	}
	return findTimer(state, id), nil
}

// SetHalfwayAlert は中間アラートの有効フラグを明示的な値に設定する。
// タイマーの状態には依存せず、いつでも切り替えられる。
func (s *Service) SetHalfwayAlert(id string, enabled bool) (*model.Timer, error) {
	return s.transition(id, engine.ToggleHalfwayAlert{ID: id, Value: enabled})
}

// transition は存在確認のうえでアクションを適用し、適用後のタイマーを返す。
func (s *Service) transition(id string, action engine.Action) (*model.Timer, error) {
	if findTimer(s.store.Snapshot(), id) == nil {
		return nil, model.NewTimerNotFoundError(id)
	}
	state := s.store.Dispatch(action)
	return findTimer(state, id), nil
}

// findTimer はStateから指定IDのタイマーのコピーを探す。
func findTimer(state model.State, id string) *model.Timer {
	for _, t := range state.Timers {
		if t.ID == id {
			found := t
			return &found
		}
	}
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
