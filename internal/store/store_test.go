package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tally.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestStoreSetGetDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Set(ctx, "a", []byte(`[1]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, "a", []byte(`[1,2]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := st.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `[1,2]` {
		t.Fatalf("unexpected value %s", got)
	}
	if err := st.Delete(ctx, "a", "never-set"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "a"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestStoreSetManyAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := st.SetMany(ctx, map[string][]byte{"x": []byte(`1`), "y": []byte(`2`)}); err != nil {
		t.Fatalf("set many: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()
	for key, want := range map[string]string{"x": "1", "y": "2"} {
		got, ok, err := reopened.Get(ctx, key)
		if err != nil || !ok || string(got) != want {
			t.Fatalf("key %s: got %q ok=%v err=%v", key, got, ok, err)
		}
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte(`"a"`)
	if err := m.Set(ctx, "k", buf); err != nil {
		t.Fatalf("set: %v", err)
	}
	buf[1] = 'b'
	got, _, _ := m.Get(ctx, "k")
	if string(got) != `"a"` {
		t.Fatalf("memory backend aliased caller buffer: %s", got)
	}
}
