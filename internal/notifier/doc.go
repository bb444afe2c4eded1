// Package notifier は購読ごとの定期通知ジョブを管理するスケジューラを提供する。
//
// 購読セットが変わるたびに全ジョブを破棄して作り直す（差分更新はしない）。
// 各発火ではミュート判定と期日判定を行い、期日を過ぎた項目から1件を
// 無作為に選んで配信チャネルへ引き渡す。配信の失敗は発火の境界で
// 堰き止め、スケジューラ本体へは決して伝播させない。
package notifier
