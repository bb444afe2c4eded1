package todo

import (
	"testing"
	"time"
)

// TestTodoUpdate は項目の追加・更新を検証する。
func TestTodoUpdate(t *testing.T) {
	t.Parallel()

	t.Run("IDなしの入力は新規項目として追加される", func(t *testing.T) {
		t.Parallel()

		list := NewTodo("groceries")
		list.Update(ItemParams{Text: strPtr("牛乳")})

		if len(list.Items) != 1 {
			t.Fatalf("項目数 = %d, want 1", len(list.Items))
		}
		if list.Items[0].ID == "" {
			t.Error("IDが生成されていません")
		}
	})

	t.Run("既存IDに一致すればその場で更新される", func(t *testing.T) {
		t.Parallel()

		list := NewTodo("groceries")
		list.Update(ItemParams{ID: "item-1", Text: strPtr("牛乳")})
		list.Update(ItemParams{ID: "item-1", Text: strPtr("低脂肪牛乳")})

		if len(list.Items) != 1 {
			t.Fatalf("項目数 = %d, want 1", len(list.Items))
		}
		if list.Items[0].Text != "低脂肪牛乳" {
			t.Errorf("Text = %q, want 低脂肪牛乳", list.Items[0].Text)
		}
	})

	t.Run("一致しないIDは新規項目として追加される", func(t *testing.T) {
		t.Parallel()

		list := NewTodo("groceries")
		list.Update(ItemParams{ID: "item-1", Text: strPtr("牛乳")})
		list.Update(ItemParams{ID: "item-2", Text: strPtr("卵")})

		if len(list.Items) != 2 {
			t.Fatalf("項目数 = %d, want 2", len(list.Items))
		}
	})

	t.Run("挿入順が保持される", func(t *testing.T) {
		t.Parallel()

		list := NewTodo("groceries")
		list.Update(ItemParams{ID: "a"})
		list.Update(ItemParams{ID: "b"})
		list.Update(ItemParams{ID: "c"})
		list.Update(ItemParams{ID: "b", Text: strPtr("更新")})

		want := []string{"a", "b", "c"}
		for i, id := range want {
			if list.Items[i].ID != id {
				t.Errorf("Items[%d].ID = %q, want %q", i, list.Items[i].ID, id)
			}
		}
	})
}

// TestTodoRemove は項目の削除を検証する。
func TestTodoRemove(t *testing.T) {
	t.Parallel()

	t.Run("更新してから削除するとIDが残らない", func(t *testing.T) {
		t.Parallel()

		list := NewTodo("groceries")
		list.Update(ItemParams{ID: "item-1", Text: strPtr("牛乳")})
		list.Remove("item-1")

		for _, item := range list.Items {
			if item.ID == "item-1" {
				t.Error("削除した項目が残っています")
			}
		}
	})

	t.Run("存在しないIDの削除は何もしない", func(t *testing.T) {
		t.Parallel()

		list := NewTodo("groceries")
		list.Update(ItemParams{ID: "item-1"})
		list.Remove("nonexistent")

		if len(list.Items) != 1 {
			t.Errorf("項目数 = %d, want 1", len(list.Items))
		}
	})
}

// TestTodoValidate はリストの厳格検証を検証する。
func TestTodoValidate(t *testing.T) {
	t.Parallel()

	t.Run("妥当な項目のみなら成功する", func(t *testing.T) {
		t.Parallel()

		date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)
		list := &Todo{Name: "groceries", Items: []*Item{
			{ID: "a", Text: "牛乳", Priority: 1, Date: date},
			{ID: "b", Text: "卵", Priority: 2, Date: date},
		}}
		if err := list.Validate(); err != nil {
			t.Errorf("検証に失敗: %v", err)
		}
	})

	t.Run("IDが重複している場合はエラー", func(t *testing.T) {
		t.Parallel()

		date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)
		list := &Todo{Name: "groceries", Items: []*Item{
			{ID: "a", Priority: 1, Date: date},
			{ID: "a", Priority: 1, Date: date},
		}}
		if err := list.Validate(); err == nil {
			t.Error("ID重複でエラーになりません")
		}
	})

	t.Run("不正な項目が含まれる場合はエラー", func(t *testing.T) {
		t.Parallel()

		list := &Todo{Name: "groceries", Items: []*Item{{ID: "", Priority: 1}}}
		if err := list.Validate(); err == nil {
			t.Error("不正な項目でエラーになりません")
		}
	})
}
