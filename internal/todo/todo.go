package todo

import "fmt"

// Todo は名前付きの項目リストを表す。項目は挿入順を保持する。
type Todo struct {
	// Name はリストの一意な名前（URLのコード部分）。
	Name string `json:"name"`
	// Items はリスト内の項目列。
	Items []*Item `json:"items"`
}

// NewTodo は空のTodoリストを生成する。
func NewTodo(name string) *Todo {
	return &Todo{Name: name, Items: []*Item{}}
}

// Update は項目を追加または更新する。IDが既存項目に一致すればその項目を
// 寛容モードで更新し、一致しなければ新規項目として末尾に追加する。
// 作成と更新を分けた入口は持たない。
func (t *Todo) Update(p ItemParams) {
	if p.ID != "" {
		for _, item := range t.Items {
			if item.ID == p.ID {
				item.Apply(p)
				return
			}
		}
	}
	t.Items = append(t.Items, FixItem(p))
}

// Remove はIDが一致する項目を削除する。存在しない場合は何もしない。
func (t *Todo) Remove(id string) {
	for i, item := range t.Items {
		if item.ID == id {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			return
		}
	}
}

// Validate は全項目を厳格モードで検証し、ID重複がないことも確認する。
// 永続化データの復元時に使用する。
func (t *Todo) Validate() error {
	seen := make(map[string]struct{}, len(t.Items))
	for _, item := range t.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("リスト %q: %w", t.Name, err)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("リスト %q: %w: id %q が重複しています", t.Name, ErrInvalidItem, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// clone はTodoの深いコピーを返す。
func (t *Todo) clone() *Todo {
	items := make([]*Item, 0, len(t.Items))
	for _, item := range t.Items {
		c := *item
		items = append(items, &c)
	}
	return &Todo{Name: t.Name, Items: items}
}
