package config

import (
	"fmt"
	"os"
	"strings"
)

// Config はサービス全体の設定値。環境変数から読み込み、
// 未設定の項目はデフォルト値を使う。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// DataDB はスナップショットを保存するSQLiteデータベースのパス。
	DataDB string
	// PublicVapidKey はWeb Pushの公開VAPID鍵。
	PublicVapidKey string
	// PrivateVapidKey はWeb Pushの秘密VAPID鍵。
	PrivateVapidKey string
	// ExternalURL は通知内のリンク生成に使う外部公開URL。
	ExternalURL string
	// Push はプッシュ通知のネットワーク送信を有効にするかどうか。
	// 無効でも通知の選別処理自体は実行される。
	Push bool
	// DefaultSchedule は購読時にスケジュール未指定の場合に使うcron式。
	DefaultSchedule string
	// AllowedOrigins はCORSで許可するオリジンの一覧。空なら許可しない。
	AllowedOrigins []string
}

// Load は環境変数から設定を読み込む。
func Load() *Config {
	port := getenv("PORT", "8080")
	cfg := &Config{
		Port:            port,
		DataDB:          getenv("DATA_DB", "./oshirase.db"),
		PublicVapidKey:  os.Getenv("PUBLIC_VAPID_KEY"),
		PrivateVapidKey: os.Getenv("PRIVATE_VAPID_KEY"),
		ExternalURL:     getenv("EXTERNAL_URL", fmt.Sprintf("http://localhost:%s", port)),
		Push:            parseBool(getenv("PUSH", "true")),
		DefaultSchedule: getenv("DEFAULT_SCHEDULE", "0 9 * * *"),
	}
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg
}

// getenv は環境変数を読み、未設定または空の場合はfallbackを返す。
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseBool は "false"、"0"、"no"（大文字小文字を問わず）のみを偽と解釈する。
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "false", "0", "no":
		return false
	}
	return true
}
