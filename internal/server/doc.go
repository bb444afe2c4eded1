// Package server はリマインダーサービスのHTTPリクエスト面を提供する。
//
// リストのコードをURLに含む薄いハンドラ群で、各操作はStoreと
// Notifierの操作に1:1で対応する。ストアを変更する操作は共通の
// パイプライン（スナップショット保存 → 閲覧者への配信）を通る。
package server
