package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "reviewflow/internal/adapters/redis"
)

type page struct {
	Items []string `json:"items"`
}

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var got page
	if ok, err := c.Get(ctx, "feed", &got); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "feed", page{Items: []string{"a", "b"}}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("reviewflow:feed") {
		t.Fatalf("expected namespaced key in redis, have %v", mr.Keys())
	}

	ok, err := c.Get(ctx, "feed", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got.Items) != 2 || got.Items[1] != "b" {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := c.Del(ctx, "feed"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "feed", &got); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "subject:property:1", map[string]string{"name": "x"}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var got map[string]string
	if ok, _ := c.Get(ctx, "subject:property:1", &got); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCache_UndecodableValueIsMiss(t *testing.T) {
	c, mr := newCache(t)
	if err := mr.Set("reviewflow:bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var got page
	ok, err := c.Get(context.Background(), "bad", &got)
	if ok || err == nil {
		t.Fatalf("expected miss with decode error, got ok=%v err=%v", ok, err)
	}
}
