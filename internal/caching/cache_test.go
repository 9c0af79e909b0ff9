package caching

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mapCache struct {
	values map[string]any
	sets   int
}

func (m *mapCache) Get(_ context.Context, key string, target any) error {
	v, ok := m.values[key]
	if !ok {
		return ErrCacheMiss
	}
	*(target.(*[]string)) = v.([]string)
	return nil
}

func (m *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.sets++
	m.values[key] = value
	return nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func TestUseCache(t *testing.T) {
	c := &mapCache{values: map[string]any{}}
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"skyline", "gold-star"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := UseCache(context.Background(), c, "brands", time.Minute, load)
		if err != nil {
			t.Fatalf("UseCache returned error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 values, got %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected loader to run once, ran %d times", calls)
	}

	c.Delete(context.Background(), "brands")
	UseCache(context.Background(), c, "brands", time.Minute, load)
	if calls != 2 {
		t.Errorf("expected reload after delete, ran %d times", calls)
	}
}

func TestUseCache_LoaderError(t *testing.T) {
	c := &mapCache{values: map[string]any{}}
	boom := errors.New("boom")
	_, err := UseCache(context.Background(), c, "k", time.Minute, func() ([]string, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected loader error, got %v", err)
	}
	if c.sets != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestUseCache_NilCache(t *testing.T) {
	got, err := UseCache(context.Background(), nil, "k", time.Minute, func() (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Errorf("expected passthrough without cache, got %d %v", got, err)
	}
}

func TestCacheRedis_LocalOnly(t *testing.T) {
	c := NewCacheRedis(nil, true)
	ctx := context.Background()

	var v []string
	if err := c.Get(ctx, "missing", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("deleting a missing key should not fail, got %v", err)
	}
}
