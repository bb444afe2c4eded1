// Package snapshot はストア全体のスナップショットを永続化するチャネルを提供する。
//
// スナップショットは往復可能なJSONテキストのまま、SQLiteの単一行に
// 保存する。保存のたびに丸ごと置き換えるため、最後に成功した保存が
// 常に最新の状態となる。
package snapshot
