package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nao1215/oshirase/internal/todo"
	"github.com/nao1215/oshirase/pkg/config"
)

// deliverTimeout は1回の配信に許す最長時間。
const deliverTimeout = 30 * time.Second

// Pusher は通知の配信チャネルを表す。targetには購読時に受け取った
// 不透明なペイロードをそのまま渡す。
type Pusher interface {
	Send(ctx context.Context, target json.RawMessage, payload []byte) error
}

// Payload はプッシュ通知のJSONペイロード。
type Payload struct {
	// Title は通知のタイトル（リスト名）。
	Title string `json:"title"`
	// Body は通知の本文。
	Body string `json:"body"`
	// URL は通知を開いたときに遷移するリンク。
	URL string `json:"url"`
}

// Notifier は購読ごとに1つの定期ジョブを維持するスケジューラ。
type Notifier struct {
	// mu はcronフィールドの差し替えを守る。ストアの読み取りは
	// Store自身のロックを通すため、発火中はこのロックを保持しない。
	mu     sync.Mutex
	store  *todo.Store
	cfg    *config.Config
	pusher Pusher
	cron   *cron.Cron
}

// New は新しいNotifierを生成する。Start を呼ぶまでジョブは動かない。
func New(store *todo.Store, cfg *config.Config, pusher Pusher) *Notifier {
	return &Notifier{store: store, cfg: cfg, pusher: pusher}
}

// Start は現在の購読セットに合わせてジョブを束ねてスケジューラを開始する。
func (n *Notifier) Start() {
	log.Printf("通知スケジューラを開始します")
	n.Rebuild()
}

// Rebuild は束ねていた全ジョブを破棄し、ストア内の購読ごとに1つずつ
// ジョブを作り直す。差分更新ではなく全置換であり、購読セットの変更の
// たびに呼び出しても安全（冪等）。古いスケジューラは新しいジョブを
// 開始しなくなるため、削除済み購読のジョブが発火することはない。
func (n *Notifier) Rebuild() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cron != nil {
		n.cron.Stop()
	}
	subs := n.store.Subscriptions()
	log.Printf("%d件の購読ジョブを作り直します", len(subs))
	c := cron.New()
	for _, sub := range subs {
		todoName := sub.TodoName
		if _, err := c.AddFunc(sub.Schedule, func() { n.fire(todoName) }); err != nil {
			// 購読は構築時にスケジュールを検証済みのため通常は到達しない
			log.Printf("ジョブの登録に失敗 (%s): %v", todoName, err)
		}
	}
	c.Start()
	n.cron = c
}

// Stop は全ジョブを停止する。実行中の発火は完了まで走り切るが、
// 新しい発火は開始されない。
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cron != nil {
		n.cron.Stop()
		n.cron = nil
	}
}

// Jobs は現在束ねているジョブ数を返す。
func (n *Notifier) Jobs() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cron == nil {
		return 0
	}
	return len(n.cron.Entries())
}

// fire は1回の発火を実行する。エラーとパニックはここで堰き止め、
// スケジューラ本体や他のジョブへは決して伝播させない。
func (n *Notifier) fire(todoName string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] 通知ジョブ (%s): %v", todoName, r)
		}
	}()
	if err := n.SendItemNotification(todoName); err != nil {
		log.Printf("通知の配信に失敗 (%s): %v", todoName, err)
	}
}

// SendItemNotification はリストの期日を過ぎた項目から1件を無作為に選んで
// 通知する。購読が存在しない、ミュート中、または期日を過ぎた項目がない
// 場合は何もせずnilを返す。
//
// 購読はジョブに束ねた値ではなく毎回ストアから引き直す。ミュートは
// 購読セットを変えないためRebuildを伴わず、最新のミュート状態を
// 反映するにはこの引き直しが必要になる。購読が消えていた場合に
// 何も配信されないこともこれで保証される。
func (n *Notifier) SendItemNotification(todoName string) error {
	now := time.Now()
	sub, ok := n.store.Subscription(todoName)
	if !ok {
		return nil
	}
	if sub.Muted(now) {
		log.Printf("'%s' の通知は %s までミュート中", todoName, sub.MuteUntil.Format(time.RFC3339))
		return nil
	}
	due := n.store.DueItems(todoName, now)
	if len(due) == 0 {
		return nil
	}
	item := due[rand.IntN(len(due))]
	payload := Payload{
		Title: todoName,
		Body:  item.Text,
		URL:   fmt.Sprintf("%s/%s", n.cfg.ExternalURL, todoName),
	}
	return n.deliver(sub, payload)
}

// SendSubscriptionNotification は購読完了の確認通知を送信する。
// ミュート判定は行わない。失敗はログに残すのみで呼び出し元へ返さない。
func (n *Notifier) SendSubscriptionNotification(sub todo.Subscription) {
	payload := Payload{
		Title: sub.TodoName,
		Body:  fmt.Sprintf("Subscribed to %s", sub.TodoName),
		URL:   n.cfg.ExternalURL,
	}
	if err := n.deliver(sub, payload); err != nil {
		log.Printf("購読確認通知の配信に失敗 (%s): %v", sub.TodoName, err)
	}
}

// SendMuteNotification はミュート適用の確認通知を送信する。
// 本文で新しいミュート終了時刻を知らせる。
func (n *Notifier) SendMuteNotification(sub todo.Subscription) {
	until := ""
	if sub.MuteUntil != nil {
		until = sub.MuteUntil.Format(time.RFC3339)
	}
	payload := Payload{
		Title: sub.TodoName,
		Body:  fmt.Sprintf("Notifications muted until %s", until),
		URL:   n.cfg.ExternalURL,
	}
	if err := n.deliver(sub, payload); err != nil {
		log.Printf("ミュート確認通知の配信に失敗 (%s): %v", sub.TodoName, err)
	}
}

// deliver はペイロードを配信チャネルへ引き渡す。プッシュ無効時は
// 選別処理を終えた上でネットワーク送信のみを省略し、ログに残す。
// ストアのロックを保持せずに呼び出すこと。
func (n *Notifier) deliver(sub todo.Subscription, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("ペイロードのシリアライズに失敗: %w", err)
	}
	if !n.cfg.Push {
		log.Printf("プッシュ通知は無効のため送信をスキップ (%s): %s", sub.TodoName, body)
		return nil
	}
	log.Printf("'%s' の通知を送信します", sub.TodoName)
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()
	return n.pusher.Send(ctx, sub.Target, body)
}
