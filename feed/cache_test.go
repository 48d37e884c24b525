package feed

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/store"
)

func TestCache_RoundTrip(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	c := NewCache(ms, 300)
	ctx := context.Background()

	results := []core.RecommendationResult{
		{ContentID: "a", FinalScore: 0.9, Confidence: 0.8},
		{ContentID: "b", FinalScore: 0.5, Confidence: 0.7},
	}
	if err := c.Set(ctx, "u1", results); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get(ctx, "u1")
	if !ok {
		t.Fatal("Get() miss after Set")
	}
	if len(got) != 2 || got[0].ContentID != "a" || got[0].FinalScore != 0.9 {
		t.Errorf("Get() = %+v", got)
	}

	// 其他用户不受影响
	if _, ok := c.Get(ctx, "u2"); ok {
		t.Error("Get(u2) hit, keys must be user-scoped")
	}
}

func TestCache_Invalidate(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	c := NewCache(ms, 300)
	ctx := context.Background()

	_ = c.Set(ctx, "u1", []core.RecommendationResult{{ContentID: "a"}})
	if err := c.Invalidate(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, "u1"); ok {
		t.Error("Get() hit after Invalidate")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	c := NewCache(ms, 1)
	ctx := context.Background()

	_ = c.Set(ctx, "u1", []core.RecommendationResult{{ContentID: "a"}})
	if _, ok := c.Get(ctx, "u1"); !ok {
		t.Fatal("Get() miss before expiry")
	}
	time.Sleep(1100 * time.Millisecond)
	if _, ok := c.Get(ctx, "u1"); ok {
		t.Error("Get() hit after TTL expiry")
	}
}

func TestCache_CorruptEntryTreatedAsMiss(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	c := NewCache(ms, 300)
	ctx := context.Background()

	_ = ms.Set(ctx, cacheKey("u1"), []byte("not json"), 300)
	if _, ok := c.Get(ctx, "u1"); ok {
		t.Error("corrupt cache entry must be a miss")
	}
}
