package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// スキーマ定義。スナップショットは常にid=1の1行のみ。
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    -- 単一行に固定するための主キー
    id INTEGER PRIMARY KEY CHECK (id = 1),
    -- ストア全体のJSONダンプ
    data TEXT NOT NULL,
    -- 最終保存日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Store はスナップショットを保持するSQLiteデータベース。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// New はスナップショットDBを開き、スキーマを適用する。
// pathにはテスト用に ":memory:" も指定できる。
func New(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	return &Store{db: db}, nil
}

// Save はスナップショットを保存する。既存の内容は丸ごと置き換える。
func (s *Store) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, data, updated_at) VALUES (1, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(data))
	if err != nil {
		return fmt.Errorf("スナップショットの保存に失敗: %w", err)
	}
	return nil
}

// Load は最後に保存したスナップショットを返す。
// 一度も保存されていない場合は (nil, nil) を返す。
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE id = 1").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スナップショットの読み込みに失敗: %w", err)
	}
	return []byte(data), nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}
