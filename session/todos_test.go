package session

import (
	"testing"

	"github.com/pocketforge/forge/model"
)

func TestTodoStoreCreateAndList(t *testing.T) {
	store := NewTodoStore()

	first := store.Create("p1", "first", "")
	second := store.Create("p1", "second", "details")

	if first.ID == "" || first.ID == second.ID {
		t.Errorf("IDs not unique: %q %q", first.ID, second.ID)
	}
	if first.Status != model.TodoPending {
		t.Errorf("new todo status = %v", first.Status)
	}

	items := store.List("p1")
	if len(items) != 2 {
		t.Fatalf("list = %d items", len(items))
	}
	if items[0].Title != "first" || items[1].Title != "second" {
		t.Errorf("creation order lost: %v", items)
	}
}

func TestTodoStoreUpdateAllowsAnyTransition(t *testing.T) {
	store := NewTodoStore()
	item := store.Create("p1", "task", "")

	transitions := []model.TodoStatus{
		model.TodoInProgress,
		model.TodoCompleted,
		model.TodoPending, // reopening is allowed
	}
	for _, status := range transitions {
		updated, err := store.Update("p1", item.ID, status)
		if err != nil {
			t.Fatalf("update to %v: %v", status, err)
		}
		if updated.Status != status {
			t.Errorf("status = %v, want %v", updated.Status, status)
		}
	}
}

func TestTodoStoreUpdateUnknownID(t *testing.T) {
	store := NewTodoStore()
	store.Create("p1", "task", "")

	if _, err := store.Update("p1", "missing-id", model.TodoCompleted); err == nil {
		t.Error("update of unknown ID succeeded")
	}
	// Same ID under a different project is also unknown.
	item := store.Create("p2", "other", "")
	if _, err := store.Update("p1", item.ID, model.TodoCompleted); err == nil {
		t.Error("update crossed project boundaries")
	}
}

func TestTodoStoreListIsCopy(t *testing.T) {
	store := NewTodoStore()
	store.Create("p1", "task", "")

	items := store.List("p1")
	items[0].Title = "tampered"

	if store.List("p1")[0].Title != "task" {
		t.Error("store mutated through List result")
	}
}

func TestTodoStoreClearProject(t *testing.T) {
	store := NewTodoStore()
	store.Create("p1", "a", "")
	store.Create("p2", "b", "")

	store.ClearProject("p1")
	if len(store.List("p1")) != 0 {
		t.Error("p1 not cleared")
	}
	if len(store.List("p2")) != 1 {
		t.Error("clear leaked into other projects")
	}
}
