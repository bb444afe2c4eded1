// Package viewer はリストを開いているライブ閲覧者のWebSocket登録簿を提供する。
//
// リストの状態が変わるたびに、そのリストを見ている全閲覧者へ最新の
// ビューを配信する。送信に失敗した接続は切断済みとみなして登録簿から
// 外すだけで、エラーは呼び出し元へ伝播しない。
package viewer
