package viewer

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub はリスト名ごとのライブ閲覧者の登録簿。
// 登録・削除・ブロードキャストは並行に呼び出しても安全。
type Hub struct {
	mu    sync.Mutex
	conns map[string][]*websocket.Conn
}

// NewHub は空のHubを生成する。
func NewHub() *Hub {
	return &Hub{conns: make(map[string][]*websocket.Conn)}
}

// Register は閲覧者を登録する。
func (h *Hub) Register(todoName string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[todoName] = append(h.conns[todoName], conn)
}

// Unregister は閲覧者を登録簿から外す。未登録の場合は何もしない。
func (h *Hub) Unregister(todoName string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.conns[todoName]
	for i, c := range conns {
		if c == conn {
			h.conns[todoName] = append(conns[:i], conns[i+1:]...)
			return
		}
	}
}

// Viewers は登録中の閲覧者数を返す。
func (h *Hub) Viewers(todoName string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[todoName])
}

// Broadcast はリストの全閲覧者へテキストメッセージを送信する。
// 送信に失敗した接続は切断済みとみなし、閉じて登録簿から外す。
// ロック中に送信するため、1つのリストへのブロードキャストは直列化される。
func (h *Hub) Broadcast(todoName string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.conns[todoName]
	if len(conns) == 0 {
		return
	}
	log.Printf("'%s' の閲覧者 %d 件へ更新を配信します", todoName, len(conns))
	alive := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("閲覧者への送信に失敗したため切断します (%s): %v", todoName, err)
			_ = conn.Close()
			continue
		}
		alive = append(alive, conn)
	}
	h.conns[todoName] = alive
}
