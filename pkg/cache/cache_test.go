package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/coursegraph/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Errorf("Clear error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = (%v, %v), want miss", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get(key) = (%q, %v, %v), want value hit", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("corrupt entry = (%v, %v), want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir should survive Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// RecommendationKey should include the conversation in the hash
	rk1 := k.RecommendationKey("gpt-3.5-turbo", RecommendationKeyOpts{Messages: []string{"finance"}})
	rk2 := k.RecommendationKey("gpt-3.5-turbo", RecommendationKeyOpts{Messages: []string{"marketing"}})
	rk3 := k.RecommendationKey("gpt-4o", RecommendationKeyOpts{Messages: []string{"finance"}})
	if rk1 == rk2 || rk1 == rk3 {
		t.Error("Different models or messages should produce different keys")
	}
	if rk1[:len("recommendation:")] != "recommendation:" {
		t.Errorf("RecommendationKey unexpected prefix: %s", rk1)
	}

	// ArtifactKey ignores selection order
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Selection: []string{"MBA501", "MBA505"}})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Selection: []string{"MBA505", "MBA501"}})
	ak3 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Selection: []string{"MBA501", "MBA505"}})
	if ak1 != ak2 {
		t.Error("Selection order should not change ArtifactKey")
	}
	if ak1 == ak3 {
		t.Error("Different formats should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "staging:")

	want := "staging:" + inner.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if got := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); got != want {
		t.Errorf("ScopedKeyer ArtifactKey = %s, want %s", got, want)
	}

	rk := scoped.RecommendationKey("m", RecommendationKeyOpts{})
	if len(rk) < 15 || rk[:8] != "staging:" {
		t.Errorf("ScopedKeyer RecommendationKey should be prefixed: %s", rk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().RecommendationKey("m", RecommendationKeyOpts{})
	if got := scoped.RecommendationKey("m", RecommendationKeyOpts{}); got != want {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets, bytes int
}

func (h *countingHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string) { h.misses++ }
func (h *countingHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.sets++
	h.bytes += size
}

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, _ := NewFileCache(t.TempDir())
	c := Instrument(fc, "recommendation")

	_, _, _ = c.Get(ctx, "k")
	_ = c.Set(ctx, "k", []byte("four"), 0)
	_, _, _ = c.Get(ctx, "k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 || hooks.bytes != 4 {
		t.Errorf("hooks = %+v, want 1 hit, 1 miss, 1 set of 4 bytes", *hooks)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("COURSEGRAPH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COURSEGRAPH_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr, "coursegraph-test:")
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()
	defer c.Clear(ctx)

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get = (%q, %v, %v)", data, hit, err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "", ""); err == nil {
		t.Error("NewRedisCache with empty addr should fail")
	}
}
