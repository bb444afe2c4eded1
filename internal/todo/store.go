package todo

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Store はプロセス内で唯一のTodoリストと購読の保有者。
// すべての読み書きは単一のミューテックスを通し、読み取りは深いコピーを
// 返すため、通知ジョブとリクエスト処理が並行しても途中状態は観測されない。
type Store struct {
	mu    sync.Mutex
	todos []*Todo
	subs  []*Subscription
}

// NewStore は空のStoreを生成する。
func NewStore() *Store {
	return &Store{}
}

// snapshotData は永続化スナップショットのJSON構造。
type snapshotData struct {
	Todos    []*Todo         `json:"todos"`
	SubInfos []*Subscription `json:"subInfos"`
}

// View はクライアントへ公開するリストの状態。
type View struct {
	// Todo はリスト本体。
	Todo Todo `json:"todo"`
	// SubInfo は購読の公開可能な部分。購読がない場合はnil。
	SubInfo *SubscriptionView `json:"subInfo,omitempty"`
}

// SubscriptionView は購読のうちクライアントへ公開してよいフィールド。
// 配信先（Target）は決して含めない。
type SubscriptionView struct {
	// Schedule は通知のcron式。
	Schedule string `json:"schedule"`
	// MuteUntil はミュート終了時刻。ミュートしていない場合はnil。
	MuteUntil *time.Time `json:"muteUntil,omitempty"`
}

// Todo は名前でリストを取得する。存在しなければ空のリストを作成して
// 登録する（参照が書き込みを伴う点に注意）。返り値はコピー。
func (st *Store) Todo(name string) Todo {
	st.mu.Lock()
	defer st.mu.Unlock()
	return *st.getOrCreate(name).clone()
}

// getOrCreate は名前で検索し、なければ空のリストを登録して返す。
// 呼び出し側がロックを保持していることを前提とする。
func (st *Store) getOrCreate(name string) *Todo {
	for _, t := range st.todos {
		if t.Name == name {
			return t
		}
	}
	t := NewTodo(name)
	st.todos = append(st.todos, t)
	return t
}

// UpdateItem はリストの項目を追加または更新する。
func (st *Store) UpdateItem(todoName string, p ItemParams) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.getOrCreate(todoName).Update(p)
}

// RemoveItem はリストから項目を削除する。項目が存在しない場合は何もしない。
func (st *Store) RemoveItem(todoName, id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.getOrCreate(todoName).Remove(id)
}

// DueItems は期日が現在時刻以前の項目のコピーを返す。
func (st *Store) DueItems(todoName string, now time.Time) []Item {
	st.mu.Lock()
	defer st.mu.Unlock()
	var due []Item
	for _, item := range st.getOrCreate(todoName).Items {
		if !item.Date.After(now) {
			due = append(due, *item)
		}
	}
	return due
}

// Subscription は名前で購読を検索する。存在しない場合は第2戻り値がfalse。
func (st *Store) Subscription(todoName string) (Subscription, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.subs {
		if s.TodoName == todoName {
			return *s.clone(), true
		}
	}
	return Subscription{}, false
}

// Subscriptions は全購読のコピーを返す。
func (st *Store) Subscriptions() []Subscription {
	st.mu.Lock()
	defer st.mu.Unlock()
	subs := make([]Subscription, 0, len(st.subs))
	for _, s := range st.subs {
		subs = append(subs, *s.clone())
	}
	return subs
}

// AddSubscription はTodoName をキーとして購読をアップサートする。
// 既存の購読はフィールド単位のマージではなく丸ごと置き換える。
func (st *Store) AddSubscription(sub *Subscription) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, s := range st.subs {
		if s.TodoName == sub.TodoName {
			st.subs[i] = sub.clone()
			return
		}
	}
	st.subs = append(st.subs, sub.clone())
}

// RemoveSubscription は購読を削除し、削除が行われたかどうかを返す。
func (st *Store) RemoveSubscription(todoName string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, s := range st.subs {
		if s.TodoName == todoName {
			st.subs = append(st.subs[:i], st.subs[i+1:]...)
			return true
		}
	}
	return false
}

// MuteFor は購読のミュート期間を延長し、更新後の購読のコピーを返す。
// 購読が存在しない場合は第2戻り値がfalse。
func (st *Store) MuteFor(todoName string, d time.Duration, now time.Time) (Subscription, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.subs {
		if s.TodoName == todoName {
			s.MuteFor(d, now)
			return *s.clone(), true
		}
	}
	return Subscription{}, false
}

// ClientView はリストのクライアント向けビューを返す。
// 購読がある場合もスケジュールとミュート状態のみを含める。
func (st *Store) ClientView(todoName string) View {
	st.mu.Lock()
	defer st.mu.Unlock()
	v := View{Todo: *st.getOrCreate(todoName).clone()}
	for _, s := range st.subs {
		if s.TodoName == todoName {
			sv := &SubscriptionView{Schedule: s.Schedule}
			if s.MuteUntil != nil {
				t := *s.MuteUntil
				sv.MuteUntil = &t
			}
			v.SubInfo = sv
			break
		}
	}
	return v
}

// Snapshot はストア全体を往復可能なJSONテキストとして書き出す。
func (st *Store) Snapshot() ([]byte, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	data, err := json.MarshalIndent(snapshotData{Todos: st.todos, SubInfos: st.subs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("スナップショットのシリアライズに失敗: %w", err)
	}
	return data, nil
}

// Load はスナップショットからストアを復元する。リストと購読は厳格モードで
// 検証し、失敗した場合はストアを変更せずエラーを返す。
func (st *Store) Load(data []byte) error {
	var snap snapshotData
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("スナップショットの解釈に失敗: %w", err)
	}
	for _, t := range snap.Todos {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("スナップショットの検証に失敗: %w", err)
		}
	}
	for _, s := range snap.SubInfos {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("スナップショットの検証に失敗: %w", err)
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.todos = snap.Todos
	st.subs = snap.SubInfos
	return nil
}
