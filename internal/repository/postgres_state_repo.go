package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/timerman/internal/model"
)

// PostgresStateRepo はPostgreSQLを使用した状態リポジトリ。
// 各コレクションをDELETE+INSERTで丸ごと上書きする。書き込みは
// コレクション単位のトランザクションで行い、コレクション間の
// アトミック性は仮定しない。
type PostgresStateRepo struct {
	db *sql.DB
}

// NewPostgresStateRepo はPostgresStateRepoを生成する。
func NewPostgresStateRepo(db *sql.DB) *PostgresStateRepo {
	return &PostgresStateRepo{db: db}
}

// LoadTimers は永続化されたタイマー一覧を返す。1件もない場合はnilを返す。
func (r *PostgresStateRepo) LoadTimers(ctx context.Context) ([]model.Timer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category_id, duration_seconds, remaining_seconds,
		        status, halfway_alert, halfway_alert_triggered, created_at, updated_at
		 FROM timers
		 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("タイマーの読み込みに失敗しました: %w", err)
	}
	defer rows.Close()

	var timers []model.Timer
	for rows.Next() {
		var t model.Timer
		if err := rows.Scan(
			&t.ID, &t.Name, &t.CategoryID, &t.Duration, &t.RemainingTime,
			&t.Status, &t.HalfwayAlert, &t.HalfwayAlertTriggered, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("タイマー行のスキャンに失敗しました: %w", err)
		}
		timers = append(timers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タイマーの読み込みに失敗しました: %w", err)
	}

	return timers, nil
}

// LoadCategories は永続化されたカテゴリ一覧を表示順で返す。1件もない場合はnilを返す。
func (r *PostgresStateRepo) LoadCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, is_expanded, position
		 FROM categories
		 ORDER BY position, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの読み込みに失敗しました: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IsExpanded, &c.Position); err != nil {
			return nil, fmt.Errorf("カテゴリ行のスキャンに失敗しました: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("カテゴリの読み込みに失敗しました: %w", err)
	}

	return categories, nil
}

// LoadTimerLogs は永続化された完了記録一覧を完了日時順で返す。1件もない場合はnilを返す。
func (r *PostgresStateRepo) LoadTimerLogs(ctx context.Context) ([]model.TimerLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timer_id, name, category_id, duration_seconds, completed_at
		 FROM timer_logs
		 ORDER BY completed_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("完了記録の読み込みに失敗しました: %w", err)
	}
	defer rows.Close()

	var logs []model.TimerLog
	for rows.Next() {
		var l model.TimerLog
		if err := rows.Scan(&l.ID, &l.TimerID, &l.Name, &l.CategoryID, &l.Duration, &l.CompletedAt); err != nil {
			return nil, fmt.Errorf("完了記録行のスキャンに失敗しました: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("完了記録の読み込みに失敗しました: %w", err)
	}

	return logs, nil
}

// SaveTimers はタイマーコレクションを単一トランザクションで丸ごと上書きする。
func (r *PostgresStateRepo) SaveTimers(ctx context.Context, timers []model.Timer) error {
	return r.replaceAll(ctx, "timers", func(tx *sql.Tx) error {
		for _, t := range timers {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO timers (id, name, category_id, duration_seconds, remaining_seconds,
				                     status, halfway_alert, halfway_alert_triggered, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				t.ID, t.Name, t.CategoryID, t.Duration, t.RemainingTime,
				t.Status, t.HalfwayAlert, t.HalfwayAlertTriggered, t.CreatedAt, t.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("タイマーの挿入に失敗しました: %w", err)
			}
		}
		return nil
	})
}

// SaveCategories はカテゴリコレクションを単一トランザクションで丸ごと上書きする。
// スライスの添字を表示順として保存する。
func (r *PostgresStateRepo) SaveCategories(ctx context.Context, categories []model.Category) error {
	return r.replaceAll(ctx, "categories", func(tx *sql.Tx) error {
		for i, c := range categories {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO categories (id, name, is_expanded, position)
				 VALUES ($1, $2, $3, $4)`,
				c.ID, c.Name, c.IsExpanded, i,
			)
			if err != nil {
				return fmt.Errorf("カテゴリの挿入に失敗しました: %w", err)
			}
		}
		return nil
	})
}

// SaveTimerLogs は完了記録コレクションを単一トランザクションで丸ごと上書きする。
func (r *PostgresStateRepo) SaveTimerLogs(ctx context.Context, logs []model.TimerLog) error {
	return r.replaceAll(ctx, "timer_logs", func(tx *sql.Tx) error {
		for _, l := range logs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO timer_logs (id, timer_id, name, category_id, duration_seconds, completed_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				l.ID, l.TimerID, l.Name, l.CategoryID, l.Duration, l.CompletedAt,
			)
			if err != nil {
				return fmt.Errorf("完了記録の挿入に失敗しました: %w", err)
			}
		}
		return nil
	})
}

// replaceAll はテーブルを空にしてから挿入関数を実行するトランザクションを実行する。
func (r *PostgresStateRepo) replaceAll(ctx context.Context, table string, insert func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("%sの削除に失敗しました: %w", table, err)
	}

	if err := insert(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}
