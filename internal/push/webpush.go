package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Sender はWeb Pushプロトコルでブラウザへ通知を送る配信チャネル。
type Sender struct {
	// subscriber はVAPIDの連絡先。サービスの外部公開URLを指定する。
	subscriber string
	// publicVapidKey / privateVapidKey はVAPID鍵ペア。
	publicVapidKey  string
	privateVapidKey string
}

// NewSender は新しいSenderを生成する。
func NewSender(subscriber, publicVapidKey, privateVapidKey string) *Sender {
	return &Sender{
		subscriber:      subscriber,
		publicVapidKey:  publicVapidKey,
		privateVapidKey: privateVapidKey,
	}
}

// Send はブラウザのプッシュ購読情報（JSON）へペイロードを送信する。
// targetが購読情報として解釈できない場合、またはプッシュサービスが
// 2xx以外を返した場合はエラーを返す。
func (s *Sender) Send(ctx context.Context, target json.RawMessage, payload []byte) error {
	var sub webpush.Subscription
	if err := json.Unmarshal(target, &sub); err != nil {
		return fmt.Errorf("プッシュ購読情報の解釈に失敗: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicVapidKey,
		VAPIDPrivateKey: s.privateVapidKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("プッシュ通知の送信に失敗: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("プッシュ通知の送信に失敗: status=%d", resp.StatusCode)
	}
	return nil
}
