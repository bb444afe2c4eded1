package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule は購読スケジュールが不正なcron式であることを表す。
var ErrInvalidSchedule = errors.New("スケジュールが不正です")

// ErrInvalidSubscription は購読の厳格検証に失敗したことを表す。
var ErrInvalidSubscription = errors.New("購読が不正です")

// Subscription はTodoリスト1件に対する通知購読を表す。
// リスト名ごとに高々1件しか存在しない。
type Subscription struct {
	// TodoName は購読対象のリスト名。
	TodoName string `json:"todoName"`
	// Schedule は通知の繰り返しを表すcron式（標準5フィールド）。
	Schedule string `json:"schedule"`
	// Target は配信チャネルへそのまま渡す不透明なペイロード
	// （ブラウザのプッシュ購読情報など）。閲覧者には公開しない。
	Target json.RawMessage `json:"subscription"`
	// MuteUntil が未来の場合、その時刻まで通知を抑止する。
	MuteUntil *time.Time `json:"muteUntil,omitempty"`
}

// NewSubscription は購読を構築する。scheduleはcron式として検証し、
// 不正な場合はErrInvalidScheduleを返す。
func NewSubscription(todoName, schedule string, target json.RawMessage) (*Subscription, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}
	return &Subscription{TodoName: todoName, Schedule: schedule, Target: target}, nil
}

// ValidateSchedule はcron式を検証する。
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, schedule, err)
	}
	return nil
}

// Muted は指定時刻において通知が抑止中かどうかを返す。
func (s *Subscription) Muted(now time.Time) bool {
	return s.MuteUntil != nil && s.MuteUntil.After(now)
}

// MuteFor はミュート期間を延長する。起点は「現在時刻」と「既存のミュート
// 終了時刻」のうち遅い方で、連続したミュートは上書きではなく積み重なる。
func (s *Subscription) MuteFor(d time.Duration, now time.Time) {
	base := now
	if s.MuteUntil != nil && s.MuteUntil.After(now) {
		base = *s.MuteUntil
	}
	until := base.Add(d)
	s.MuteUntil = &until
}

// Validate は永続化データの復元時に行う厳格検証。
func (s *Subscription) Validate() error {
	if s.TodoName == "" {
		return fmt.Errorf("%w: todoNameが空です", ErrInvalidSubscription)
	}
	return ValidateSchedule(s.Schedule)
}

// clone はSubscriptionの深いコピーを返す。
func (s *Subscription) clone() *Subscription {
	c := *s
	if s.Target != nil {
		c.Target = append(json.RawMessage(nil), s.Target...)
	}
	if s.MuteUntil != nil {
		t := *s.MuteUntil
		c.MuteUntil = &t
	}
	return &c
}
