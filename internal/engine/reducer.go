package engine

import (
	"time"

	"github.com/hitoshi/timerman/internal/model"
)

// Reduce は現在のStateと1つのActionから新しいStateを計算する純粋関数。
// 入力のStateは決して書き換えず、変更があるコレクションのみ新しいスライスを作る。
// 存在しないIDを指すアクションや、前提状態が一致しない遷移は
// エラーにせずStateをそのまま返す（サイレントno-op）。
// nowはUpdatedAtの更新に使用する。
func Reduce(s model.State, a Action, now time.Time) model.State {
	switch a := a.(type) {
	case AddTimer:
		timers := make([]model.Timer, 0, len(s.Timers)+1)
		timers = append(timers, s.Timers...)
		timers = append(timers, a.Timer)
		s.Timers = timers
		return s

	case UpdateTimer:
		return mapTimer(s, a.Timer.ID, func(t model.Timer) (model.Timer, bool) {
			updated := a.Timer
			updated.UpdatedAt = now
			return updated, true
		})

	case RemoveTimer:
		timers := make([]model.Timer, 0, len(s.Timers))
		removed := false
		for _, t := range s.Timers {
			if t.ID == a.ID {
				removed = true
				continue
			}
			timers = append(timers, t)
		}
		if !removed {
			return s
		}
		s.Timers = timers
		return s

	case StartTimer:
		return mapTimer(s, a.ID, func(t model.Timer) (model.Timer, bool) {
			if t.Status != model.StatusIdle && t.Status != model.StatusPaused {
				return t, false
			}
			t.Status = model.StatusRunning
			t.UpdatedAt = now
			return t, true
		})

	case PauseTimer:
		return mapTimer(s, a.ID, func(t model.Timer) (model.Timer, bool) {
			if t.Status != model.StatusRunning {
				return t, false
			}
			t.Status = model.StatusPaused
			t.UpdatedAt = now
			return t, true
		})

	case ResetTimer:
		return mapTimer(s, a.ID, func(t model.Timer) (model.Timer, bool) {
			return resetTimer(t, now), true
		})

	case CompleteTimer:
		return mapTimer(s, a.ID, func(t model.Timer) (model.Timer, bool) {
			t.Status = model.StatusCompleted
			t.RemainingTime = 0
			t.UpdatedAt = now
			return t, true
		})

	case TickTimer:
		return mapTimer(s, a.ID, func(t model.Timer) (model.Timer, bool) {
			if t.Status != model.StatusRunning {
				return t, false
			}
			// 残り1秒以下なら減算ではなく完了させる。
			// duration=1のタイマーは最初のtickで完了し、
			// runningのまま残り0を表示する区間を作らない。
			if t.RemainingTime <= 1 {
				t.Status = model.StatusCompleted
				t.RemainingTime = 0
				t.UpdatedAt = now
				return t, true
			}
			t.RemainingTime--
			t.UpdatedAt = now
			return t, true
		})

	case ToggleHalfwayAlert:
		return mapTimer(s, a.ID, func(t model.Timer) (model.Timer, bool) {
			t.HalfwayAlert = a.Value
			t.UpdatedAt = now
			return t, true
		})

	case TriggerHalfwayAlert:
		return mapTimer(s, a.ID, func(t model.Timer) (model.Timer, bool) {
			t.HalfwayAlertTriggered = true
			t.UpdatedAt = now
			return t, true
		})

	case AddCategory:
		categories := make([]model.Category, 0, len(s.Categories)+1)
		categories = append(categories, s.Categories...)
		categories = append(categories, a.Category)
		s.Categories = categories
		return s

	case UpdateCategory:
		return mapCategory(s, a.Category.ID, func(c model.Category) model.Category {
			return a.Category
		})

	case RemoveCategory:
		categories := make([]model.Category, 0, len(s.Categories))
		removed := false
		for _, c := range s.Categories {
			if c.ID == a.ID {
				removed = true
				continue
			}
			categories = append(categories, c)
		}
		if !removed {
			return s
		}
		// 削除カテゴリを参照しているタイマーをデフォルトカテゴリへ退避する。
		timers := make([]model.Timer, len(s.Timers))
		for i, t := range s.Timers {
			if t.CategoryID == a.ID {
				t.CategoryID = model.DefaultCategoryID
				t.UpdatedAt = now
			}
			timers[i] = t
		}
		s.Categories = categories
		s.Timers = timers
		return s

	case ToggleCategoryExpanded:
		return mapCategory(s, a.ID, func(c model.Category) model.Category {
			c.IsExpanded = !c.IsExpanded
			return c
		})

	case StartCategoryTimers:
		return mapCategoryTimers(s, a.CategoryID, func(t model.Timer) (model.Timer, bool) {
			// 開始できるのはidleとpausedのみ。完了済みはリセット後にのみ再開できる。
			if t.Status != model.StatusIdle && t.Status != model.StatusPaused {
				return t, false
			}
			t.Status = model.StatusRunning
			t.UpdatedAt = now
			return t, true
		})

	case PauseCategoryTimers:
		return mapCategoryTimers(s, a.CategoryID, func(t model.Timer) (model.Timer, bool) {
			if t.Status != model.StatusRunning {
				return t, false
			}
			t.Status = model.StatusPaused
			t.UpdatedAt = now
			return t, true
		})

	case ResetCategoryTimers:
		return mapCategoryTimers(s, a.CategoryID, func(t model.Timer) (model.Timer, bool) {
			return resetTimer(t, now), true
		})

	case AddTimerLog:
		logs := make([]model.TimerLog, 0, len(s.TimerLogs)+1)
		logs = append(logs, s.TimerLogs...)
		logs = append(logs, a.Log)
		s.TimerLogs = logs
		return s

	case SetTimers:
		s.Timers = a.Timers
		return s

	case SetCategories:
		s.Categories = a.Categories
		return s

	case SetTimerLogs:
		s.TimerLogs = a.Logs
		return s
	}

	return s
}

// resetTimer はリセット遷移を適用する。状態によらず常に適用可能で冪等。
// halfwayAlertTriggeredをクリアするのはこの遷移だけである。
func resetTimer(t model.Timer, now time.Time) model.Timer {
	t.Status = model.StatusIdle
	t.RemainingTime = t.Duration
	t.HalfwayAlertTriggered = false
	t.UpdatedAt = now
	return t
}

// mapTimer は指定IDのタイマーに変換を適用した新しいStateを返す。
// IDが見つからない場合、または変換が変更なしを返した場合はStateをそのまま返す。
func mapTimer(s model.State, id string, fn func(model.Timer) (model.Timer, bool)) model.State {
	for i, t := range s.Timers {
		if t.ID != id {
			continue
		}
		updated, changed := fn(t)
		if !changed {
			return s
		}
		timers := make([]model.Timer, len(s.Timers))
		copy(timers, s.Timers)
		timers[i] = updated
		s.Timers = timers
		return s
	}
	return s
}

// mapCategory は指定IDのカテゴリに変換を適用した新しいStateを返す。
func mapCategory(s model.State, id string, fn func(model.Category) model.Category) model.State {
	for i, c := range s.Categories {
		if c.ID != id {
			continue
		}
		categories := make([]model.Category, len(s.Categories))
		copy(categories, s.Categories)
		categories[i] = fn(c)
		s.Categories = categories
		return s
	}
	return s
}

// mapCategoryTimers はカテゴリに属する各タイマーに変換を適用した新しいStateを返す。
// 1つも変更されなかった場合はStateをそのまま返す。
func mapCategoryTimers(s model.State, categoryID string, fn func(model.Timer) (model.Timer, bool)) model.State {
	timers := make([]model.Timer, len(s.Timers))
	anyChanged := false
	for i, t := range s.Timers {
		if t.CategoryID == categoryID {
			if updated, changed := fn(t); changed {
				timers[i] = updated
				anyChanged = true
				continue
			}
		}
		timers[i] = t
	}
	if !anyChanged {
		return s
	}
	s.Timers = timers
	return s
}
