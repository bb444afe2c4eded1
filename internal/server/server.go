package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nao1215/oshirase/internal/notifier"
	"github.com/nao1215/oshirase/internal/push"
	"github.com/nao1215/oshirase/internal/snapshot"
	"github.com/nao1215/oshirase/internal/todo"
	"github.com/nao1215/oshirase/internal/viewer"
	"github.com/nao1215/oshirase/pkg/config"
	"github.com/nao1215/oshirase/pkg/middleware"
)

// Server はリマインダーサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサービス設定。
	cfg *config.Config
	// store はリストと購読の唯一の保有者。
	store *todo.Store
	// notifier は購読ごとの定期通知ジョブを管理する。
	notifier *notifier.Notifier
	// hub はライブ閲覧者のWebSocket登録簿。
	hub *viewer.Hub
	// snapshots はストア全体の永続化チャネル。
	snapshots *snapshot.Store
	// upgrader はWebSocketへのアップグレードに使う。
	upgrader websocket.Upgrader
}

// New は新しいサーバーを生成する。スナップショットDBを開き、前回保存した
// 状態があれば復元する。スナップショットの欠損・破損は起動エラーには
// せず、空の状態で開始する。
func New(cfg *config.Config) (*Server, error) {
	snapshots, err := snapshot.New(cfg.DataDB)
	if err != nil {
		return nil, fmt.Errorf("スナップショットDBのオープンに失敗: %w", err)
	}

	store := loadStore(snapshots)
	pusher := push.NewSender(cfg.ExternalURL, cfg.PublicVapidKey, cfg.PrivateVapidKey)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.AllowedOrigins))
	}

	s := &Server{
		router:    router,
		cfg:       cfg,
		store:     store,
		notifier:  notifier.New(store, cfg, pusher),
		hub:       viewer.NewHub(),
		snapshots: snapshots,
		upgrader: websocket.Upgrader{
			// リストのコード自体が資格情報のため、オリジンでは絞らない
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.setupRoutes()

	return s, nil
}

// loadStore は永続化済みスナップショットからストアを復元する。
// スナップショットが存在しない、または不正な場合は空のストアを返す。
func loadStore(snapshots *snapshot.Store) *todo.Store {
	store := todo.NewStore()
	data, err := snapshots.Load(context.Background())
	switch {
	case err != nil:
		log.Printf("スナップショットの読み込みに失敗したため空の状態で開始します: %v", err)
	case data == nil:
		log.Printf("スナップショットが存在しないため空の状態で開始します")
	default:
		if err := store.Load(data); err != nil {
			log.Printf("スナップショットが不正なため空の状態で開始します: %v", err)
		}
	}
	return store
}

// Run は通知スケジューラとHTTPサーバーを起動する。
func (s *Server) Run() error {
	s.notifier.Start()
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// Close は通知スケジューラを止め、スナップショットDBを閉じる。
func (s *Server) Close() error {
	s.notifier.Stop()
	return s.snapshots.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "oshirase"})
	})

	code := s.router.Group("/:code")
	{
		// リストの現在のビューを取得
		code.GET("/data", s.handleData())
		// ライブ閲覧用のWebSocket
		code.GET("/ws", s.handleWS())
		// 項目の追加・更新
		code.POST("/update", s.handleUpdate())
		// 項目の削除
		code.POST("/remove", s.handleRemove())
		// 通知の購読
		code.POST("/subscribe", s.handleSubscribe())
		// 購読の解除
		code.POST("/unsubscribe", s.handleUnsubscribe())
		// 通知の一時ミュート
		code.POST("/mute", s.handleMute())
	}
}

// updated はストア変更後の共通パイプライン。スナップショットを永続化し、
// 対象リストの閲覧者へ最新のビューを配信する。永続化の失敗はログに残す
// のみで、メモリ上の状態が引き続き正となる（次の変更で再度保存を試みる）。
func (s *Server) updated(todoName string) {
	data, err := s.store.Snapshot()
	if err != nil {
		log.Printf("スナップショットのシリアライズに失敗: %v", err)
	} else if err := s.snapshots.Save(context.Background(), data); err != nil {
		log.Printf("スナップショットの保存に失敗: %v", err)
	}

	view, err := json.Marshal(s.store.ClientView(todoName))
	if err != nil {
		log.Printf("ビューのシリアライズに失敗 (%s): %v", todoName, err)
		return
	}
	s.hub.Broadcast(todoName, view)
}

// handleData はリストの現在のクライアント向けビューを返すハンドラ。
// 存在しないリストを参照すると空のリストが作成される。
func (s *Server) handleData() gin.HandlerFunc {
	return func(c *gin.Context) {
		todoName := c.Param("code")
		c.JSON(http.StatusOK, s.store.ClientView(todoName))
	}
}

// handleUpdate は項目の追加・更新を行うハンドラ。IDが既存項目に一致すれば
// 更新、一致しなければ新規追加となる。入力は寛容モードで補正される。
func (s *Server) handleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		todoName := c.Param("code")
		var p todo.ItemParams
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		s.store.UpdateItem(todoName, p)
		s.updated(todoName)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// removeRequest は項目削除リクエストのJSON構造。
type removeRequest struct {
	// ID は削除する項目の識別子。
	ID string `json:"id" binding:"required"`
}

// handleRemove は項目を削除するハンドラ。項目が存在しない場合も成功を返す。
func (s *Server) handleRemove() gin.HandlerFunc {
	return func(c *gin.Context) {
		todoName := c.Param("code")
		var req removeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		s.store.RemoveItem(todoName, req.ID)
		s.updated(todoName)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// subscribeRequest は購読リクエストのJSON構造。
type subscribeRequest struct {
	// Schedule は通知のcron式。省略時は設定のデフォルトを使う。
	Schedule string `json:"schedule"`
	// Subscription は配信チャネルへ渡す不透明なペイロード。
	Subscription json.RawMessage `json:"subscription" binding:"required"`
}

// handleSubscribe はリストの通知を購読するハンドラ。同じリストの既存の
// 購読は丸ごと置き換える。購読セットが変わるためジョブを作り直し、
// 購読確認の通知を1回送る。
func (s *Server) handleSubscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		todoName := c.Param("code")
		var req subscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		schedule := req.Schedule
		if schedule == "" {
			schedule = s.cfg.DefaultSchedule
		}

		sub, err := todo.NewSubscription(todoName, schedule, req.Subscription)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		s.store.AddSubscription(sub)
		s.notifier.Rebuild()
		s.notifier.SendSubscriptionNotification(*sub)
		s.updated(todoName)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleUnsubscribe は購読を解除するハンドラ。購読がない場合も成功を返す。
func (s *Server) handleUnsubscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		todoName := c.Param("code")
		if removed := s.store.RemoveSubscription(todoName); removed {
			s.notifier.Rebuild()
		}
		s.updated(todoName)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// muteRequest はミュートリクエストのJSON構造。
type muteRequest struct {
	// Seconds はミュートする秒数。
	Seconds int `json:"seconds" binding:"required,gt=0"`
}

// handleMute は通知を一時ミュートするハンドラ。ミュートは現在の
// ミュート終了時刻に積み重なる。購読がない場合は404を返す。
func (s *Server) handleMute() gin.HandlerFunc {
	return func(c *gin.Context) {
		todoName := c.Param("code")
		var req muteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		sub, ok := s.store.MuteFor(todoName, time.Duration(req.Seconds)*time.Second, time.Now())
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "購読が見つかりません"})
			return
		}

		s.notifier.SendMuteNotification(sub)
		s.updated(todoName)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleWS は閲覧者のWebSocket接続を受け付けるハンドラ。
// 接続は切断されるまで登録簿に保持され、リストの変更のたびに
// 最新のビューが送られてくる。
func (s *Server) handleWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		todoName := c.Param("code")
		conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocketへのアップグレードに失敗 (%s): %v", todoName, err)
			return
		}

		s.hub.Register(todoName, conn)
		log.Printf("'%s' の閲覧者が接続しました", todoName)

		// 切断検知のための読み捨てループ
		go func() {
			defer func() {
				s.hub.Unregister(todoName, conn)
				_ = conn.Close()
				log.Printf("'%s' の閲覧者が切断しました", todoName)
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
