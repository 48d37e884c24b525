package feature

import (
	"context"
	"testing"
)

func TestShortName(t *testing.T) {
	cases := map[string]string{
		"user_stats:likes": "likes",
		"likes":            "likes",
		"a:b:c":            "c",
	}
	for ref, want := range cases {
		if got := shortName(ref); got != want {
			t.Errorf("shortName(%q) = %q, want %q", ref, got, want)
		}
	}
}

func TestFeastService_CloseIdempotent(t *testing.T) {
	// gRPC 拨号是惰性的，不需要真实的 Feast 服务
	s, err := NewFeastService("127.0.0.1", 65535, "demo")
	if err != nil {
		t.Skipf("feast client unavailable: %v", err)
	}

	ctx := context.Background()
	if err := s.Close(ctx); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// 重复 Close 不报错、不 panic
	if err := s.Close(ctx); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
