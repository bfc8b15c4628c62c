// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/timerman/internal/model"
)

// StateRepository はタイマー状態の永続化インターフェース。
// 3つのコレクションはそれぞれ独立に読み書きされ、コレクション間の
// アトミック性は保証しない。1つの書き込みの部分的な失敗が
// 他のコレクションを壊してはならない。
type StateRepository interface {
	// LoadTimers は永続化されたタイマー一覧を返す。
	// 1件も存在しない場合はエラーではなくnilを返す。
	LoadTimers(ctx context.Context) ([]model.Timer, error)

	// LoadCategories は永続化されたカテゴリ一覧を表示順で返す。
	// 1件も存在しない場合はエラーではなくnilを返す。
	LoadCategories(ctx context.Context) ([]model.Category, error)

	// LoadTimerLogs は永続化された完了記録一覧を完了日時順で返す。
	// 1件も存在しない場合はエラーではなくnilを返す。
	LoadTimerLogs(ctx context.Context) ([]model.TimerLog, error)

	// SaveTimers はタイマーコレクションを丸ごと上書きする。
	SaveTimers(ctx context.Context, timers []model.Timer) error

	// SaveCategories はカテゴリコレクションを丸ごと上書きする。
	// スライスの順序を表示順として保存する。
	SaveCategories(ctx context.Context, categories []model.Category) error

	// SaveTimerLogs は完了記録コレクションを丸ごと上書きする。
	SaveTimerLogs(ctx context.Context, logs []model.TimerLog) error
}
