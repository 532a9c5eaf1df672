package llm

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFingerprintIsStableAndByteExact(t *testing.T) {
	a := Fingerprint("model-a", "hello")
	b := Fingerprint("model-a", "hello")
	if a != b {
		t.Fatal("expected identical (model, prompt) pairs to fingerprint identically")
	}

	c := Fingerprint("model-a", "hellO")
	if a == c {
		t.Fatal("expected a single byte change to change the fingerprint")
	}

	d := Fingerprint("model-b", "hello")
	if a == d {
		t.Fatal("expected a different model to change the fingerprint even with the same prompt")
	}
}

func TestCachePutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(filepath.Join(dir, "cache.json"))

	fp := Fingerprint("model-a", "prompt")
	if _, ok, err := cache.Get(fp); err != nil {
		t.Fatalf("Get on empty cache: %v", err)
	} else if ok {
		t.Fatal("expected a miss on an empty cache")
	}

	entry := CacheEntry{Prompt: "prompt", Response: "response", Model: "model-a"}
	if err := cache.Put(fp, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := cache.Get(fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if got != entry {
		t.Fatalf("got %+v, want %+v", got, entry)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(filepath.Join(dir, "cache.json"))

	if err := cache.Put("fp1", CacheEntry{Response: "r"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	entries, err := cache.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected an empty cache after Clear, got %d entries", len(entries))
	}
}

func TestRetryWithBackoffStopsOnNonRetryable(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond}
	calls := 0
	nonRetryable := errors.New("boom")

	_, err := retryWithBackoff(context.Background(), cfg, zap.NewNop(), "test", func() (string, error) {
		calls++
		return "", nonRetryable
	})
	if !errors.Is(err, nonRetryable) {
		t.Fatalf("expected the non-retryable error to surface unwrapped, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt for a non-retryable error, got %d", calls)
	}
}

func TestRetryWithBackoffSucceedsWithoutError(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond}
	calls := 0

	got, err := retryWithBackoff(context.Background(), cfg, zap.NewNop(), "test", func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Fatalf("got %q after %d calls, want ok after 1 call", got, calls)
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxRetries != 5 {
		t.Fatalf("expected 5 max retries, got %d", cfg.MaxRetries)
	}
	if cfg.BaseBackoff != time.Second {
		t.Fatalf("expected a 1s base backoff, got %v", cfg.BaseBackoff)
	}
}
