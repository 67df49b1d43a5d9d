package kvstore

import (
	"testing"

	"github.com/hack-pad/hackpadfs/mem"

	"github.com/hpungsan/profreach/internal/notify"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	fs, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS failed: %v", err)
	}
	return New(fs, notify.NewBus())
}

func TestFilename(t *testing.T) {
	if got := Filename("profreach:professors"); got != "profreach-professors.json" {
		t.Errorf("Filename = %q", got)
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := map[string]string{"a": "1"}
	if err := Set(s, "profreach:test", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	out := map[string]string{}
	if !Get(s, "profreach:test", &out) {
		t.Fatal("Get returned false for stored key")
	}
	if out["a"] != "1" {
		t.Errorf("out = %v", out)
	}
}

func TestGet_MissingKeyLeavesFallbackUntouched(t *testing.T) {
	s := newTestStore(t)

	out := []string{"fallback"}
	if Get(s, "profreach:absent", &out) {
		t.Error("Get should return false for missing key")
	}
	if len(out) != 1 || out[0] != "fallback" {
		t.Errorf("fallback mutated: %v", out)
	}
}

func TestSet_PublishesKey(t *testing.T) {
	fs, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS failed: %v", err)
	}
	bus := notify.NewBus()
	s := New(fs, bus)

	var keys []string
	bus.Subscribe(func(key string) { keys = append(keys, key) })

	if err := Set(s, "profreach:memory", []string{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "profreach:memory" {
		t.Errorf("published keys = %v", keys)
	}
}

func TestNilFS_GetFalseSetNotifies(t *testing.T) {
	bus := notify.NewBus()
	s := New(nil, bus)

	if s.Available() {
		t.Error("Available should be false with nil FS")
	}

	out := "fallback"
	if Get(s, "profreach:apikey", &out) {
		t.Error("Get should return false with nil FS")
	}
	if out != "fallback" {
		t.Errorf("fallback mutated: %q", out)
	}

	published := 0
	bus.Subscribe(func(string) { published++ })

	if err := Set(s, "profreach:apikey", "k"); err != nil {
		t.Errorf("Set with nil FS should not error, got %v", err)
	}
	if published != 1 {
		t.Errorf("published = %d, want 1 (notify without persisting)", published)
	}
	if Has(s, "profreach:apikey") {
		t.Error("Has should be false with nil FS")
	}
}

func TestDelete_MissingKeyIsNotAnError(t *testing.T) {
	s := newTestStore(t)

	if err := Delete(s, "profreach:absent"); err != nil {
		t.Errorf("Delete of missing key errored: %v", err)
	}
}

func TestDelete_RemovesAndPublishes(t *testing.T) {
	fs, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS failed: %v", err)
	}
	bus := notify.NewBus()
	s := New(fs, bus)

	if err := Set(s, "profreach:chats", []int{1}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !Has(s, "profreach:chats") {
		t.Fatal("Has should be true after Set")
	}

	published := 0
	bus.Subscribe(func(string) { published++ })

	if err := Delete(s, "profreach:chats"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if Has(s, "profreach:chats") {
		t.Error("Has should be false after Delete")
	}
	if published != 1 {
		t.Errorf("published = %d, want 1", published)
	}
}

func TestGet_CorruptJSONLeavesFallback(t *testing.T) {
	fs, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS failed: %v", err)
	}
	s := New(fs, notify.NewBus())

	if err := Set(s, "profreach:profile", "a plain string"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	out := map[string]int{"keep": 1}
	if Get(s, "profreach:profile", &out) {
		t.Error("Get should return false on type mismatch")
	}
	if out["keep"] != 1 {
		t.Errorf("fallback mutated: %v", out)
	}
}
