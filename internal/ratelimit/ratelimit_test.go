package ratelimit

import (
	"context"
	"testing"
)

func TestNewWithoutRedisAllowsEverything(t *testing.T) {
	for _, perMinute := range []int{0, 6} {
		l := New(nil, perMinute)
		if _, ok := l.(Unlimited); !ok {
			t.Fatalf("expected Unlimited for perMinute=%d, got %T", perMinute, l)
		}
		for i := 0; i < 100; i++ {
			res, err := l.Allow(context.Background(), "receipts:1")
			if err != nil || !res.Allowed {
				t.Fatalf("call %d: expected allowed, got %+v %v", i, res, err)
			}
		}
	}
}
