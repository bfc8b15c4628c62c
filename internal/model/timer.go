// Package model はドメインモデルを定義する。
package model

import "time"

// TimerStatus はタイマーのライフサイクル状態を表す。
type TimerStatus string

const (
	// StatusIdle は未開始状態。remainingTime == duration が保証される。
	StatusIdle TimerStatus = "idle"
	// StatusRunning はカウントダウン中の状態。
	StatusRunning TimerStatus = "running"
	// StatusPaused は一時停止状態。
	StatusPaused TimerStatus = "paused"
	// StatusCompleted は完了状態。remainingTime == 0 が保証される。
	StatusCompleted TimerStatus = "completed"
)

// Timer は1つのカウントダウンタイマーを表す。
// Durationは作成時に固定され、以後変更されない。
// RemainingTimeは 0 <= RemainingTime <= Duration を常に満たす。
type Timer struct {
	ID                    string
	Name                  string
	CategoryID            string
	Duration              int // 合計秒数
	RemainingTime         int // 残り秒数
	Status                TimerStatus
	HalfwayAlert          bool
	HalfwayAlertTriggered bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Category はタイマーの名前付きグルーピングを表す。
// タイマーを所有せず、Timer側がIDで参照するのみ。
type Category struct {
	ID         string
	Name       string
	IsExpanded bool
	Position   int
}

// TimerLog はタイマー完了時に1回だけ作成されるイミュータブルな記録。
// 完了時点のタイマーの名前・カテゴリ・合計秒数をコピーして保持する。
// 追記専用であり、更新・削除操作は存在しない。
type TimerLog struct {
	ID          string
	TimerID     string
	Name        string
	CategoryID  string
	Duration    int
	CompletedAt time.Time
}

// State は集約ルート。3つのコレクションを排他的に所有する。
// TimerとCategoryはID参照のみで関連し、埋め込みでは関連しない。
// Stateの値はイミュータブルとして扱い、変更はReducerが新しい値を返すことで行う。
type State struct {
	Timers     []Timer
	Categories []Category
	TimerLogs  []TimerLog
}

// DefaultCategoryID はカテゴリ削除時の退避先となるセンチネルカテゴリのID。
// このカテゴリ自体は削除できない。
const DefaultCategoryID = "default"

// DefaultCategories は初回起動時にシードされる組み込みカテゴリ一覧を返す。
func DefaultCategories() []Category {
	return []Category{
		{ID: DefaultCategoryID, Name: "Uncategorized", IsExpanded: true, Position: 0},
		{ID: "workout", Name: "Workout", IsExpanded: true, Position: 1},
		{ID: "study", Name: "Study", IsExpanded: true, Position: 2},
		{ID: "break", Name: "Break", IsExpanded: true, Position: 3},
	}
}
