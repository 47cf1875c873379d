package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, prefix), mr
}

type sessionSummary struct {
	ID      uint   `json:"id"`
	PinCode string `json:"pin_code"`
	Status  string `json:"status"`
}

func TestCacheHelperSetGet(t *testing.T) {
	helper, _ := newTestHelper(t, "session:")
	ctx := context.Background()

	want := sessionSummary{ID: 7, PinCode: "493817", Status: "pending"}
	if err := helper.Set(ctx, "pin:493817", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got sessionSummary
	if err := helper.Get(ctx, "pin:493817", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCacheHelperGetMiss(t *testing.T) {
	helper, _ := newTestHelper(t, "session:")

	var dest sessionSummary
	err := helper.Get(context.Background(), "pin:000000", &dest)
	if err != ErrCacheNotFound {
		t.Errorf("Get() on missing key error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperPrefixing(t *testing.T) {
	helper, mr := newTestHelper(t, "leaderboard:")
	ctx := context.Background()

	if err := helper.SetString(ctx, "session:12", "[]", time.Minute); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}

	if !mr.Exists("leaderboard:session:12") {
		t.Error("expected key to be stored with the helper prefix")
	}
}

func TestCacheHelperDelete(t *testing.T) {
	helper, mr := newTestHelper(t, "session:")
	ctx := context.Background()

	for _, key := range []string{"id:1", "id:2", "pin:111111"} {
		if err := helper.SetString(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("SetString(%s) error = %v", key, err)
		}
	}

	if err := helper.Delete(ctx, "id:1", "id:2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if mr.Exists("session:id:1") || mr.Exists("session:id:2") {
		t.Error("deleted keys still present")
	}
	if !mr.Exists("session:pin:111111") {
		t.Error("unrelated key was deleted")
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t, "leaderboard:")
	ctx := context.Background()

	for _, key := range []string{"session:5", "session:5:page:2", "session:6"} {
		if err := helper.SetString(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("SetString(%s) error = %v", key, err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "session:5*"); err != nil {
		t.Fatalf("InvalidatePattern() error = %v", err)
	}

	if mr.Exists("leaderboard:session:5") || mr.Exists("leaderboard:session:5:page:2") {
		t.Error("matching keys survived invalidation")
	}
	if !mr.Exists("leaderboard:session:6") {
		t.Error("non-matching key was invalidated")
	}
}

func TestCacheHelperNilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "session:")
	ctx := context.Background()

	if err := helper.Set(ctx, "id:1", "x", time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v, want nil", err)
	}
	if err := helper.Delete(ctx, "id:1"); err != nil {
		t.Errorf("Delete() with nil client error = %v, want nil", err)
	}

	var dest string
	if err := helper.Get(ctx, "id:1", &dest); err != ErrCacheNotAvailable {
		t.Errorf("Get() with nil client error = %v, want ErrCacheNotAvailable", err)
	}
}

func TestInvalidateSessionCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cm := NewCacheManager(client)
	ctx := context.Background()

	if err := cm.Session.SetString(ctx, "id:9", "x", time.Minute); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	if err := cm.Session.SetString(ctx, "pin:123456", "x", time.Minute); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	if err := cm.Leaderboard.SetString(ctx, "session:9", "x", time.Minute); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}

	InvalidateSessionCache(ctx, cm, 9, "123456")

	for _, key := range []string{"session:id:9", "session:pin:123456", "leaderboard:session:9"} {
		if mr.Exists(key) {
			t.Errorf("key %s survived session invalidation", key)
		}
	}
}
