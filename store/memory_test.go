package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !core.IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want NOT_FOUND", err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	// 同 key 覆盖写入
	if err := s.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("Get() after overwrite = %q, want v2", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsNotFound(err) {
		t.Errorf("Get() after Delete error = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}
	time.Sleep(1100 * time.Millisecond)
	// 过期条目视同不存在，即使清理还没跑到
	if _, err := s.Get(ctx, "k"); !core.IsNotFound(err) {
		t.Errorf("Get() after expiry error = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStore_SortedSet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	for member, score := range map[string]float64{"a": 1, "b": 3, "c": 2} {
		if err := s.ZAdd(ctx, "z", score, member); err != nil {
			t.Fatal(err)
		}
	}

	// ZRange 按分数降序
	got, err := s.ZRange(ctx, "z", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("ZRange(0,1) = %v, want [b c]", got)
	}

	// ZRangeByScore 按分数升序
	got, err = s.ZRangeByScore(ctx, "z", 1.5, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Errorf("ZRangeByScore(1.5,3) = %v, want [c b]", got)
	}

	if err := s.ZRemRangeByScore(ctx, "z", 0, 2); err != nil {
		t.Fatal(err)
	}
	got, _ = s.ZRange(ctx, "z", 0, -1)
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("after ZRemRangeByScore = %v, want [b]", got)
	}
}

func TestMemoryStore_ZRangeEmptyKey(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	got, err := s.ZRange(context.Background(), "nope", 0, -1)
	if err != nil {
		t.Fatalf("ZRange(empty) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ZRange(empty) = %v", got)
	}
}
