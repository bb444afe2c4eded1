// 共有Todoリストのリマインダーサービスのエントリポイント。
// リストごとの購読に合わせて定期ジョブを束ね、期日を過ぎた項目を
// Web Pushで通知する。リストの編集と購読はHTTP APIで受け付け、
// 開いている閲覧者へはWebSocketで変更を配信する。
package main

import (
	"log"

	"github.com/nao1215/oshirase/internal/server"
	"github.com/nao1215/oshirase/pkg/config"
)

func main() {
	cfg := config.Load()

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗: %v", err)
	}
	defer func() { _ = srv.Close() }()

	log.Printf("リマインダーサービスを起動します: :%s", cfg.Port)
	if err := srv.Run(); err != nil {
		log.Fatalf("サーバーの起動に失敗: %v", err)
	}
}
