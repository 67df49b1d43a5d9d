package kvstore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/profreach/internal/notify"
)

func TestKeyInvertsFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"profreach-professors.json", "profreach:professors"},
		{"profreach-apikey.json", "profreach:apikey"},
		{"a-b-c.json", "a:b:c"},
		{"documents.db", ""},
		{"stray.txt", ""},
	}
	for _, tc := range cases {
		if got := Key(tc.in); got != tc.want {
			t.Errorf("Key(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	for _, key := range []string{"profreach:professors", "a:b:c"} {
		if got := Key(Filename(key)); got != key {
			t.Errorf("Key(Filename(%q)) = %q", key, got)
		}
	}
}

func TestWatcher_PublishesOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	bus := notify.NewBus()

	var mu sync.Mutex
	var keys []string
	bus.Subscribe(func(key string) {
		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
	})

	w, err := NewWatcher(dir, bus, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "profreach-memory.json"), []byte("[]"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// Delivery is eventual; poll for it.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(keys)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(keys) == 0 {
		t.Fatal("no publication observed for external write")
	}
	if keys[0] != "profreach:memory" {
		t.Errorf("key = %q, want profreach:memory", keys[0])
	}
}

func TestWatcher_IgnoresNonKVFiles(t *testing.T) {
	dir := t.TempDir()
	bus := notify.NewBus()

	var mu sync.Mutex
	published := 0
	bus.Subscribe(func(string) {
		mu.Lock()
		published++
		mu.Unlock()
	})

	w, err := NewWatcher(dir, bus, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if published != 0 {
		t.Errorf("published = %d, want 0 for non-kv file", published)
	}
}
