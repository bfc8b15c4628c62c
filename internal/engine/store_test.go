package engine

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/timerman/internal/model"
)

func newTestStore() *Store {
	s := NewStore(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	s.SetClock(func() time.Time { return testNow })
	return s
}

func TestNewStore_SeedsDefaultCategories(t *testing.T) {
	s := newTestStore()

	state := s.Snapshot()
	if len(state.Categories) != 4 {
		t.Fatalf("len(categories) = %d, want 4", len(state.Categories))
	}
	if state.Categories[0].ID != model.DefaultCategoryID {
		t.Errorf("first category = %q, want %q", state.Categories[0].ID, model.DefaultCategoryID)
	}
}

func TestStore_Dispatch_NotifiesOnChange(t *testing.T) {
	s := newTestStore()

	var notified []model.State
	s.Subscribe(func(state model.State) {
		notified = append(notified, state)
	})

	s.Dispatch(AddTimer{Timer: newTestTimer("t1", 60, model.StatusIdle)})

	if len(notified) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notified))
	}
	if len(notified[0].Timers) != 1 {
		t.Errorf("notified state has %d timers, want 1", len(notified[0].Timers))
	}
}

func TestStore_Dispatch_NoNotificationOnNoop(t *testing.T) {
	s := newTestStore()
	s.Dispatch(AddTimer{Timer: newTestTimer("t1", 60, model.StatusIdle)})

	count := 0
	s.Subscribe(func(model.State) { count++ })

	// idleのタイマーへのpauseはno-op
	s.Dispatch(PauseTimer{ID: "t1"})
	// 存在しないIDもno-op
	s.Dispatch(StartTimer{ID: "missing"})

	if count != 0 {
		t.Errorf("notifications = %d, want 0", count)
	}
}

// 複数アクションのDispatchは1回の通知にまとまり、中間状態は観測されない。
func TestStore_Dispatch_MultipleActions_SingleNotification(t *testing.T) {
	s := newTestStore()

	count := 0
	s.Subscribe(func(model.State) { count++ })

	s.Dispatch(
		AddTimer{Timer: newTestTimer("t1", 60, model.StatusIdle)},
		StartTimer{ID: "t1"},
	)

	if count != 1 {
		t.Errorf("notifications = %d, want 1", count)
	}

	got := s.Snapshot().Timers[0]
	if got.Status != model.StatusRunning {
		t.Errorf("status = %q, want running", got.Status)
	}
}

func TestStore_CompleteTimer_AppendsExactlyOneLog(t *testing.T) {
	s := newTestStore()
	timer := newTestTimer("t1", 60, model.StatusRunning)
	timer.Name = "読書"
	timer.CategoryID = "study"
	s.Dispatch(AddTimer{Timer: timer})

	state, ok := s.CompleteTimer("t1")
	if !ok {
		t.Fatal("CompleteTimer returned false")
	}

	if len(state.TimerLogs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(state.TimerLogs))
	}

	log := state.TimerLogs[0]
	if log.TimerID != "t1" {
		t.Errorf("log timer_id = %q, want %q", log.TimerID, "t1")
	}
	if log.Name != "読書" {
		t.Errorf("log name = %q, want %q", log.Name, "読書")
	}
	if log.CategoryID != "study" {
		t.Errorf("log category = %q, want %q", log.CategoryID, "study")
	}
	if log.Duration != 60 {
		t.Errorf("log duration = %d, want 60", log.Duration)
	}
	if log.ID == "" {
		t.Error("log id should be generated")
	}
	if !log.CompletedAt.Equal(testNow) {
		t.Errorf("completed_at = %v, want %v", log.CompletedAt, testNow)
	}

	got := state.Timers[0]
	if got.Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.RemainingTime != 0 {
		t.Errorf("remaining = %d, want 0", got.RemainingTime)
	}
}

func TestStore_CompleteTimer_MissingTimer_ReturnsFalse(t *testing.T) {
	s := newTestStore()

	state, ok := s.CompleteTimer("missing")
	if ok {
		t.Error("CompleteTimer should return false for unknown id")
	}
	if len(state.TimerLogs) != 0 {
		t.Errorf("len(logs) = %d, want 0", len(state.TimerLogs))
	}
}

func TestStore_Hydrate_ReplacesOnlyProvidedCollections(t *testing.T) {
	s := newTestStore()

	timers := []model.Timer{newTestTimer("t1", 60, model.StatusIdle)}
	state := s.Hydrate(timers, nil, nil)

	if len(state.Timers) != 1 {
		t.Errorf("len(timers) = %d, want 1", len(state.Timers))
	}
	// nilのコレクションは初期値（デフォルトカテゴリ）のまま
	if len(state.Categories) != 4 {
		t.Errorf("len(categories) = %d, want 4", len(state.Categories))
	}
}

func TestStore_Hydrate_AllNil_KeepsState(t *testing.T) {
	s := newTestStore()

	state := s.Hydrate(nil, nil, nil)

	if len(state.Categories) != 4 {
		t.Errorf("len(categories) = %d, want 4", len(state.Categories))
	}
}

// Dispatchの並行呼び出しで更新が失われないことを検証する。
func TestStore_Dispatch_ConcurrentProducers(t *testing.T) {
	s := newTestStore()
	s.Dispatch(AddTimer{Timer: newTestTimer("t1", 1000, model.StatusRunning)})

	const ticks = 100
	var wg sync.WaitGroup
	for i := 0; i < ticks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(TickTimer{ID: "t1"})
		}()
	}
	wg.Wait()

	got := s.Snapshot().Timers[0]
	if got.RemainingTime != 1000-ticks {
		t.Errorf("remaining = %d, want %d", got.RemainingTime, 1000-ticks)
	}
}

// --- エンドツーエンドシナリオ ---

// 3分の紅茶タイマーの一生: 作成→開始→30秒経過→一時停止→再開→完走。
func TestStore_TeaTimerScenario(t *testing.T) {
	s := newTestStore()

	timer := newTestTimer("tea", 180, model.StatusIdle)
	timer.Name = "紅茶"
	s.Dispatch(AddTimer{Timer: timer})
	s.Dispatch(StartTimer{ID: "tea"})

	for i := 0; i < 30; i++ {
		s.Dispatch(TickTimer{ID: "tea"})
	}
	if got := s.Snapshot().Timers[0]; got.RemainingTime != 150 {
		t.Fatalf("after 30 ticks: remaining = %d, want 150", got.RemainingTime)
	}

	s.Dispatch(PauseTimer{ID: "tea"})
	if got := s.Snapshot().Timers[0]; got.Status != model.StatusPaused {
		t.Fatalf("status = %q, want paused", got.Status)
	}

	// 一時停止中はtickが効かない
	s.Dispatch(TickTimer{ID: "tea"})
	if got := s.Snapshot().Timers[0]; got.RemainingTime != 150 {
		t.Fatalf("paused tick: remaining = %d, want 150", got.RemainingTime)
	}

	s.Dispatch(StartTimer{ID: "tea"})
	for i := 0; i < 150; i++ {
		s.Dispatch(TickTimer{ID: "tea"})
	}

	got := s.Snapshot().Timers[0]
	if got.Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.RemainingTime != 0 {
		t.Errorf("remaining = %d, want 0", got.RemainingTime)
	}
}
