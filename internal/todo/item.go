package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidItem は項目の厳格検証に失敗したことを表す。
var ErrInvalidItem = errors.New("項目が不正です")

// dateLayouts は日付入力として受け付けるフォーマット。
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Item はTodoリスト内の1件の項目を表す。
type Item struct {
	// ID は項目の一意識別子（UUID）。リスト内で重複しない。
	ID string `json:"id"`
	// Text は項目の本文。
	Text string `json:"text"`
	// Priority は項目の優先度。デフォルトは1。
	Priority int `json:"priority"`
	// Date は項目の期日。この日時を過ぎた項目が通知の候補になる。
	Date time.Time `json:"date"`
}

// ItemParams は項目の作成・更新入力を表す。
// nilのフィールドは「指定なし」として扱い、更新時は既存の値を維持する。
type ItemParams struct {
	// ID は対象項目の識別子。空の場合は新規項目としてIDを生成する。
	ID string `json:"id"`
	// Text は項目の本文。
	Text *string `json:"text"`
	// Priority は項目の優先度。
	Priority *int `json:"priority"`
	// Date は期日。"2006-01-02" 形式またはRFC3339形式を受け付ける。
	Date *string `json:"date"`
}

// NewItem は厳格モードで項目を構築する。
// 永続化済みデータの復元に使用し、不正なフィールドはエラーとして返す。
func NewItem(id, text string, priority int, date time.Time) (*Item, error) {
	item := &Item{ID: id, Text: text, Priority: priority, Date: date}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// FixItem は寛容モードで項目を構築する。
// 信頼できないネットワーク入力向けで、欠落・不正なフィールドは
// 安全なデフォルト（空文字、優先度1、今日の日付）に補正する。
func FixItem(p ItemParams) *Item {
	item := &Item{}
	item.Apply(p)
	return item
}

// Validate は項目を厳格モードで検証する。
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: idが空です", ErrInvalidItem)
	}
	if i.Date.IsZero() {
		return fmt.Errorf("%w: dateが設定されていません (id=%s)", ErrInvalidItem, i.ID)
	}
	return nil
}

// Apply は寛容モードで項目を更新する。指定されなかったフィールドは
// 現在の値を維持し、新規項目ではデフォルト値を補う。
func (i *Item) Apply(p ItemParams) {
	if p.ID != "" {
		i.ID = p.ID
	}
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if p.Text != nil {
		i.Text = *p.Text
	}
	if p.Priority != nil {
		i.Priority = *p.Priority
	} else if i.Priority == 0 {
		i.Priority = 1
	}
	if p.Date != nil {
		if d, err := ParseDate(*p.Date); err == nil {
			i.Date = d
		}
	}
	if i.Date.IsZero() {
		i.Date = Today()
	}
}

// ParseDate は日付文字列を解釈する。日付のみの形式とRFC3339形式の
// 両方を受け付け、日付のみの場合はローカルタイムの0時として扱う。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: dateを解釈できません: %q", ErrInvalidItem, s)
}

// Today は今日の0時（ローカルタイム）を返す。期日未指定の項目の
// デフォルト期日として使う。
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}
