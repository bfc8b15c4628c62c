// Package engine はタイマー状態エンジンを提供する。
// 閉じたアクション集合、純粋なReducer、単一ライターのStoreを含む。
// すべての状態遷移はReducerを経由し、StateはStoreの外ではイミュータブルとして扱う。
package engine

import "github.com/hitoshi/timerman/internal/model"

// Action は状態遷移を表す閉じたタグ付き集合。
// このパッケージ外で新しいアクション型を定義することはできない。
type Action interface {
	isAction()
}

// AddTimer は新しいタイマーを追加する。
// ペイロードのバリデーション（名前・秒数）は呼び出し側の責務であり、
// Reducerは検証を行わない。
type AddTimer struct {
	Timer model.Timer
}

// UpdateTimer は既存タイマーを同一IDのペイロードで置き換える。
type UpdateTimer struct {
	Timer model.Timer
}

// RemoveTimer は指定IDのタイマーを削除する。
type RemoveTimer struct {
	ID string
}

// StartTimer はidleまたはpausedのタイマーをrunningに遷移させる。
type StartTimer struct {
	ID string
}

// PauseTimer はrunningのタイマーをpausedに遷移させる。
type PauseTimer struct {
	ID string
}

// ResetTimer はタイマーを状態によらずidleに戻す。
// remainingTimeをdurationに復元し、halfwayAlertTriggeredをクリアする。
type ResetTimer struct {
	ID string
}

// CompleteTimer はタイマーを状態によらずcompletedに強制遷移させる。
// 外部完了パスが使用し、TimerLogの追記は別アクションとして順序付けられる。
type CompleteTimer struct {
	ID string
}

// TickTimer はrunningのタイマーを1秒進める。
// 残り1秒以下の場合は直接completedに遷移する。
type TickTimer struct {
	ID string
}

// ToggleHalfwayAlert はhalfwayAlertフラグを明示的な値に設定する。状態には依存しない。
type ToggleHalfwayAlert struct {
	ID    string
	Value bool
}

// TriggerHalfwayAlert はhalfwayAlertTriggeredをtrueにする。冪等。
type TriggerHalfwayAlert struct {
	ID string
}

// AddCategory は新しいカテゴリを追加する。
type AddCategory struct {
	Category model.Category
}

// UpdateCategory は既存カテゴリを同一IDのペイロードで置き換える。
type UpdateCategory struct {
	Category model.Category
}

// RemoveCategory はカテゴリを削除し、参照していたタイマーを
// デフォルトカテゴリに付け替える。タイマー自体は削除しない。
type RemoveCategory struct {
	ID string
}

// ToggleCategoryExpanded はカテゴリの展開表示フラグを反転する。
type ToggleCategoryExpanded struct {
	ID string
}

// StartCategoryTimers はカテゴリ内のidleとpausedの全タイマーをrunningにする。
// 完了済みタイマーは意図的に除外される（リセットしてから再開する）。
type StartCategoryTimers struct {
	CategoryID string
}

// PauseCategoryTimers はカテゴリ内のrunningのタイマーのみをpausedにする。
type PauseCategoryTimers struct {
	CategoryID string
}

// ResetCategoryTimers はカテゴリ内の全タイマーを状態によらずidleに戻す。
type ResetCategoryTimers struct {
	CategoryID string
}

// AddTimerLog は完了記録をtimerLogsに追記する。既存エントリは変更しない。
type AddTimerLog struct {
	Log model.TimerLog
}

// SetTimers はタイマー列を丸ごと置き換える。起動時の復元専用。
type SetTimers struct {
	Timers []model.Timer
}

// SetCategories はカテゴリ列を丸ごと置き換える。起動時の復元専用。
type SetCategories struct {
	Categories []model.Category
}

// SetTimerLogs は完了記録列を丸ごと置き換える。起動時の復元専用。
type SetTimerLogs struct {
	Logs []model.TimerLog
}

func (AddTimer) isAction()               {}
func (UpdateTimer) isAction()            {}
func (RemoveTimer) isAction()            {}
func (StartTimer) isAction()             {}
func (PauseTimer) isAction()             {}
func (ResetTimer) isAction()             {}
func (CompleteTimer) isAction()          {}
func (TickTimer) isAction()              {}
func (ToggleHalfwayAlert) isAction()     {}
func (TriggerHalfwayAlert) isAction()    {}
func (AddCategory) isAction()            {}
func (UpdateCategory) isAction()         {}
func (RemoveCategory) isAction()         {}
func (ToggleCategoryExpanded) isAction() {}
func (StartCategoryTimers) isAction()    {}
func (PauseCategoryTimers) isAction()    {}
func (ResetCategoryTimers) isAction()    {}
func (AddTimerLog) isAction()            {}
func (SetTimers) isAction()              {}
func (SetCategories) isAction()          {}
func (SetTimerLogs) isAction()           {}
