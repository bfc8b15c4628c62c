package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/timerman/internal/model"
)

// Listener は状態変更の通知を受け取る関数。
// Dispatchのクリティカルセクションの外から、変更後のStateで呼ばれる。
type Listener func(model.State)

// Store は単一ライターの状態コンテナ。
// すべての変更はミューテックス保持中のReducer呼び出しに集約され、
// 1回のDispatchはrun-to-completionで処理される。
// Tickスケジューラとユーザー操作はどちらも同じDispatchにアクションを
// 流し込むプロデューサに過ぎず、Reducer呼び出しが交錯することはない。
type Store struct {
	mu        sync.Mutex
	state     model.State
	listeners []Listener
	logger    *slog.Logger
	clock     func() time.Time
}

// NewStore はデフォルトカテゴリをシードした初期状態のStoreを生成する。
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		state: model.State{
			Categories: model.DefaultCategories(),
		},
		logger: logger,
		clock:  time.Now,
	}
}

// SetClock はテスト用に時刻取得関数を差し替える。
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Subscribe は状態変更リスナーを登録する。
// 登録はDispatchが始まる前（起動時）に済ませる想定。
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Snapshot は現在のStateを返す。
// Stateの値は一度構築されたら書き換えられないため、コピーなしで安全に読める。
func (s *Store) Snapshot() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch は1つ以上のアクションを単一のクリティカルセクションで順に適用し、
// 適用後のStateを返す。複数アクションを渡した場合、中間状態は
// 他の読み手から観測されない（ログ追記と完了遷移の原子的な連結に使用する）。
// 状態が1つでも変化した場合のみリスナーへ通知する。
func (s *Store) Dispatch(actions ...Action) model.State {
	s.mu.Lock()
	now := s.clock()
	prev := s.state
	next := prev
	for _, a := range actions {
		next = Reduce(next, a, now)
	}
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	if !stateChanged(prev, next) {
		return next
	}
	for _, l := range listeners {
		l(next)
	}
	return next
}

// CompleteTimer は外部完了パスを実行する。
// 現在のタイマーの名前・カテゴリ・秒数からTimerLogを作成して追記し、
// 続けてcompleted遷移を適用する。2つの更新は論理的には別個だが、
// 同一クリティカルセクション内で順序付けられ、tick間の読み手からは
// 原子的に観測される。タイマーが存在しない場合は何もせずfalseを返す。
func (s *Store) CompleteTimer(id string) (model.State, bool) {
	s.mu.Lock()
	var target *model.Timer
	for i := range s.state.Timers {
		if s.state.Timers[i].ID == id {
			target = &s.state.Timers[i]
			break
		}
	}
	if target == nil {
		st := s.state
		s.mu.Unlock()
		return st, false
	}

	now := s.clock()
	log := model.TimerLog{
		ID:          uuid.NewString(),
		TimerID:     target.ID,
		Name:        target.Name,
		CategoryID:  target.CategoryID,
		Duration:    target.Duration,
		CompletedAt: now,
	}

	next := Reduce(s.state, AddTimerLog{Log: log}, now)
	next = Reduce(next, CompleteTimer{ID: id}, now)
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Info("タイマーが完了しました",
		slog.String("timer_id", id),
		slog.String("timer_name", log.Name),
		slog.Int("duration_seconds", log.Duration),
	)

	for _, l := range listeners {
		l(next)
	}
	return next, true
}

// Hydrate は永続化データから起動時の状態を復元する。
// 存在するフラグメントのみ置き換え、欠けているフラグメントは初期値のまま残す。
// セッション途中で呼んではならない。
func (s *Store) Hydrate(timers []model.Timer, categories []model.Category, logs []model.TimerLog) model.State {
	actions := make([]Action, 0, 3)
	if timers != nil {
		actions = append(actions, SetTimers{Timers: timers})
	}
	if categories != nil {
		actions = append(actions, SetCategories{Categories: categories})
	}
	if logs != nil {
		actions = append(actions, SetTimerLogs{Logs: logs})
	}
	if len(actions) == 0 {
		return s.Snapshot()
	}
	return s.Dispatch(actions...)
}

// stateChanged は2つのStateが異なるコレクションを指しているかを判定する。
// Reducerはno-opで同じスライスを返すため、ヘッダ比較で十分。
func stateChanged(a, b model.State) bool {
	return !sameTimers(a.Timers, b.Timers) ||
		!sameCategories(a.Categories, b.Categories) ||
		!sameLogs(a.TimerLogs, b.TimerLogs)
}

func sameTimers(a, b []model.Timer) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

func sameCategories(a, b []model.Category) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

func sameLogs(a, b []model.TimerLog) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}
