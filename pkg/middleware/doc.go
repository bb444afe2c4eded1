// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// パニックリカバリとCORS設定を含む。リストのコードを知っていれば誰でも
// アクセスできるサービスのため、認証ミドルウェアは持たない。
package middleware
