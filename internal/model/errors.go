// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, timer, category, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmptyName         = "EMPTY_NAME"
	ErrCodeInvalidDuration   = "INVALID_DURATION"
	ErrCodeTimerNotFound     = "TIMER_NOT_FOUND"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryProtected = "CATEGORY_PROTECTED"
)

// NewEmptyNameError は名前が空の場合のバリデーションエラーを生成する。
func NewEmptyNameError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyName,
		Message:  "名前が空です。",
		Category: "validation",
		Action:   "1文字以上の名前を入力してください。",
	}
}

// NewInvalidDurationError は秒数が正でない場合のバリデーションエラーを生成する。
func NewInvalidDurationError(seconds int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDuration,
		Message:  fmt.Sprintf("無効なタイマー秒数です: %d", seconds),
		Category: "validation",
		Action:   "秒数には1以上の整数を指定してください。",
	}
}

// NewTimerNotFoundError はタイマー未検出エラーを生成する。
func NewTimerNotFoundError(timerID string) *APIError {
	return &APIError{
		Code:     ErrCodeTimerNotFound,
		Message:  fmt.Sprintf("指定されたタイマーが見つかりません: %s", timerID),
		Category: "timer",
		Action:   "タイマーIDを確認してください。",
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(categoryID string) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("指定されたカテゴリが見つかりません: %s", categoryID),
		Category: "category",
		Action:   "カテゴリIDを確認してください。",
	}
}

// NewCategoryProtectedError はデフォルトカテゴリを削除しようとした場合のエラーを生成する。
func NewCategoryProtectedError() *APIError {
	return &APIError{
		Code:     ErrCodeCategoryProtected,
		Message:  "デフォルトカテゴリは削除できません。",
		Category: "category",
		Action:   "削除できるのはユーザーが作成したカテゴリのみです。",
	}
}
