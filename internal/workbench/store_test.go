package workbench_test

import (
	"errors"
	"testing"
	"time"

	"github.com/p-n-ai/pai-lab/internal/lab"
	"github.com/p-n-ai/pai-lab/internal/workbench"
)

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	store := workbench.NewMemoryStore(0)

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b, err := store.Create(lab.NewSession(lab.SessionConfig{}), created)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if b.ID == "" {
		t.Error("Create() returned empty ID")
	}
	if !b.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", b.CreatedAt, created)
	}

	got, err := store.Get(b.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != b {
		t.Error("Get() returned a different bench")
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}

	if err := store.Delete(b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(b.ID); !errors.Is(err, workbench.ErrBenchNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrBenchNotFound", err)
	}
}

func TestMemoryStore_UniqueIDs(t *testing.T) {
	store := workbench.NewMemoryStore(0)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		b, _ := store.Create(lab.NewSession(lab.SessionConfig{}), time.Now())
		if seen[b.ID] {
			t.Fatalf("duplicate ID %s", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestMemoryStore_Limit(t *testing.T) {
	store := workbench.NewMemoryStore(2)

	for i := 0; i < 2; i++ {
		if _, err := store.Create(lab.NewSession(lab.SessionConfig{}), time.Now()); err != nil {
			t.Fatalf("Create() #%d error = %v", i+1, err)
		}
	}
	if _, err := store.Create(lab.NewSession(lab.SessionConfig{}), time.Now()); !errors.Is(err, workbench.ErrBenchLimit) {
		t.Errorf("Create() over limit error = %v, want ErrBenchLimit", err)
	}
}

func TestMemoryStore_DeleteNotFound(t *testing.T) {
	store := workbench.NewMemoryStore(0)
	if err := store.Delete("nonexistent"); !errors.Is(err, workbench.ErrBenchNotFound) {
		t.Errorf("Delete() error = %v, want ErrBenchNotFound", err)
	}
}
