// Package todo はリマインダーサービスの中核ドメインを提供する。
//
// 名前付きのTodoリストとその項目、リストごとの通知購読、およびそれらを
// 保有するStoreを定義する。Storeは単一のミューテックスで守られた唯一の
// 状態保有者で、リクエスト処理と通知ジョブの両方が同じ経路を通って
// 読み書きする。
package todo
