package storage

import (
	"context"
	"testing"
)

func TestInMemorySaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	if err := store.Save(ctx, "p1", "k", "v1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "p1", "k", "v2"); err != nil {
		t.Fatalf("second save: %v", err)
	}

	value, ok, err := store.Recall(ctx, "p1", "k")
	if err != nil || !ok {
		t.Fatalf("recall: ok=%v err=%v", ok, err)
	}
	if value != "v2" {
		t.Errorf("value = %q, want v2", value)
	}
}

func TestInMemoryRecallMiss(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	value, ok, err := store.Recall(ctx, "p1", "absent")
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if ok || value != "" {
		t.Errorf("recall of absent key = (%q, %v)", value, ok)
	}
}

func TestInMemoryProjectIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	store.Save(ctx, "p1", "k", "one")
	store.Save(ctx, "p2", "k", "two")

	v1, _, _ := store.Recall(ctx, "p1", "k")
	v2, _, _ := store.Recall(ctx, "p2", "k")
	if v1 != "one" || v2 != "two" {
		t.Errorf("projects share a namespace: %q %q", v1, v2)
	}
}

func TestInMemoryDeleteReportsExistence(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	store.Save(ctx, "p1", "k", "v")

	existed, err := store.Delete(ctx, "p1", "k")
	if err != nil || !existed {
		t.Errorf("first delete = (%v, %v), want (true, nil)", existed, err)
	}
	existed, err = store.Delete(ctx, "p1", "k")
	if err != nil || existed {
		t.Errorf("second delete = (%v, %v), want (false, nil)", existed, err)
	}
}

func TestInMemoryListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	store.Save(ctx, "p1", "a", "1")
	store.Save(ctx, "p1", "b", "2")

	listed, err := store.List(ctx, "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed["a"] != "1" || listed["b"] != "2" {
		t.Errorf("list = %v", listed)
	}

	// Mutating the returned map must not touch the store.
	listed["a"] = "tampered"
	value, _, _ := store.Recall(ctx, "p1", "a")
	if value != "1" {
		t.Errorf("store mutated through List result: %q", value)
	}
}
