package weakcache

import (
	"errors"
	"fmt"
	"runtime"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

type node struct {
	name string
	next *node
}

func newNode(name string) *node { return &node{name: name} }

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCacheBasics(t *testing.T) {
	c := New[string, int](Options{Name: "test"})
	c.Put("a", 1, LazyClass)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v %v", v, ok)
	}
	v, loaded, err := c.LoadOrStore("a", LazyClass, func() (int, error) { return 2, nil })
	if err != nil || !loaded || v != 1 {
		t.Fatalf("expected existing value, got %v loaded=%v err=%v", v, loaded, err)
	}
	boom := errors.New("boom")
	if _, _, err := c.LoadOrStore("b", LazyClass, func() (int, error) { return 0, boom }); err != boom {
		t.Fatalf("expected create error, got %v", err)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected failed create to store nothing")
	}
	if !c.Remove("a") || c.Remove("a") {
		t.Fatalf("expected remove to report once")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}

func TestIterationByCategoryDefersPuts(t *testing.T) {
	c := New[string, int](Options{})
	c.Put("lazy1", 1, LazyClass)
	c.Put("lazy2", 2, LazyClass)
	c.Put("adapter", 3, AdapterClass)

	it := c.BeginIteration(LazyClass)
	c.Put("lazy3", 4, LazyClass)
	if v, ok := c.Get("lazy3"); !ok || v != 4 {
		t.Fatalf("expected deferred put to be readable, got %v %v", v, ok)
	}
	seen := map[string]int{}
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		seen[k] = v
		if k == "lazy1" && !it.Remove() {
			t.Fatalf("expected current entry removal")
		}
	}
	it.Close()
	it.Close()
	if len(seen) != 2 || seen["lazy2"] != 2 {
		t.Fatalf("expected only the snapshot of lazy entries, got %v", seen)
	}
	if _, ok := c.Get("lazy1"); ok {
		t.Fatalf("expected removed entry to stay gone")
	}
	if c.Len() != 3 {
		t.Fatalf("expected deferred put merged after close, got %d entries", c.Len())
	}
	count := 0
	c.Range(LazyClass, func(string, int) bool { count++; return true })
	if count != 2 {
		t.Fatalf("expected 2 lazy entries, got %d", count)
	}
}

func putTransient(c *IdentityCache[node, string]) {
	c.Put(newNode("transient"), "value", CanonicalClass)
}

func TestIdentityKeyEviction(t *testing.T) {
	c := NewIdentity[node, string](Options{Name: "classes", TraceEvictions: true})
	kept := newNode("kept")
	c.Put(kept, "kept", CanonicalClass)
	putTransient(c)
	eventually(t, func() bool { return c.Len() == 1 })
	if v, ok := c.Get(kept); !ok || v != "kept" {
		t.Fatalf("expected live key to survive, got %v %v", v, ok)
	}
	if _, ok := c.Get(newNode("kept")); ok {
		t.Fatalf("expected lookups by identity, not by value")
	}
	runtime.KeepAlive(kept)
}

func putWeakValue(c *WeakValueCache[string, node], key string) {
	c.Put(key, newNode(key), Adapter)
}

func TestWeakValueEviction(t *testing.T) {
	c := NewWeakValues[string, node](Options{})
	kept := newNode("kept")
	c.Put("kept", kept, Adapter)
	putWeakValue(c, "gone")
	eventually(t, func() bool {
		_, ok := c.Get("gone")
		return !ok
	})
	if v, ok := c.Get("kept"); !ok || v != kept {
		t.Fatalf("expected referenced value to survive")
	}
	v, loaded, err := c.LoadOrStore("gone", Adapter, func() (*node, error) { return newNode("again"), nil })
	if err != nil || loaded || v.name != "again" {
		t.Fatalf("expected a fresh value after eviction, got %v loaded=%v err=%v", v, loaded, err)
	}
	runtime.KeepAlive(kept)
	runtime.KeepAlive(v)
}

func TestStableIterationSkipsDeadEntries(t *testing.T) {
	c := NewIdentity[node, int](Options{})
	kept := newNode("kept")
	c.Put(kept, 1, CanonicalClass)
	putTransientInt(c)

	it := c.BeginIteration(CanonicalClass)
	eventually(t, func() bool {
		c.t.queueMu.Lock()
		defer c.t.queueMu.Unlock()
		return len(c.t.queue) == 1
	})
	if c.Sweep() != 0 {
		t.Fatalf("expected no evictions while stable")
	}
	var keys []string
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		keys = append(keys, k.name)
	}
	if fmt.Sprint(keys) != "[kept]" {
		t.Fatalf("expected dead entry skipped, got %v", keys)
	}
	it.Close()
	c.t.mu.Lock()
	remaining := len(c.t.entries)
	c.t.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("expected deferred eviction on close, got %d entries", remaining)
	}
	runtime.KeepAlive(kept)
}

func putTransientInt(c *IdentityCache[node, int]) {
	c.Put(newNode("transient"), 2, CanonicalClass)
}

func assignTransientID(m *IDMap[node]) uint64 {
	return m.ID(newNode("transient"))
}

func TestIDMap(t *testing.T) {
	m := NewIDMap[node](Options{})
	a, b := newNode("a"), newNode("b")
	idA := m.ID(a)
	idB := m.ID(b)
	if idA == idB || m.ID(a) != idA {
		t.Fatalf("expected stable distinct ids, got %d %d", idA, idB)
	}
	lost := assignTransientID(m)
	eventually(t, func() bool { return m.Len() == 2 })
	c := newNode("c")
	idC := m.ID(c)
	if idC <= lost {
		t.Fatalf("expected ids never reused, got %d after %d", idC, lost)
	}
	if id, ok := m.Lookup(b); !ok || id != idB {
		t.Fatalf("expected lookup of b, got %d %v", id, ok)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
	runtime.KeepAlive(c)
}

func TestConcurrentUse(t *testing.T) {
	c := New[int, int](Options{})
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				key := w*1000 + i
				c.Put(key, i, LazyClass)
				if v, ok := c.Get(key); !ok || v != i {
					return fmt.Errorf("lost %d", key)
				}
				if i%50 == 0 {
					c.Range(LazyClass, func(int, int) bool { return true })
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent use: %v", err)
	}
	if c.Len() != 1600 {
		t.Fatalf("expected 1600 entries, got %d", c.Len())
	}
}

func TestNilKeysAndValuesAreMisses(t *testing.T) {
	ids := NewIdentity[node, string](Options{})
	ids.Put(nil, "value", CanonicalClass)
	if _, ok := ids.Get(nil); ok || ids.Len() != 0 {
		t.Fatalf("expected nil key to store nothing, got %d entries", ids.Len())
	}
	called := false
	_, _, err := ids.LoadOrStore(nil, CanonicalClass, func() (string, error) {
		called = true
		return "value", nil
	})
	if !errors.Is(err, ErrNilKey) || called {
		t.Fatalf("expected ErrNilKey without create, got %v called=%v", err, called)
	}
	if ids.Remove(nil) {
		t.Fatalf("expected nil key removal to report nothing")
	}

	values := NewWeakValues[string, node](Options{})
	values.Put("k", nil, Adapter)
	if _, ok := values.Get("k"); ok || values.Len() != 0 {
		t.Fatalf("expected nil value to store nothing")
	}
	kept := newNode("kept")
	values.Put("k", kept, Adapter)
	values.Put("k", nil, Adapter)
	if _, ok := values.Get("k"); ok {
		t.Fatalf("expected nil value to replace the entry with a miss")
	}
	v, loaded, err := values.LoadOrStore("made", Adapter, func() (*node, error) { return nil, nil })
	if v != nil || loaded || err != nil {
		t.Fatalf("expected nil create to be a miss, got %v loaded=%v err=%v", v, loaded, err)
	}
	if _, ok := values.Get("made"); ok || values.Len() != 0 {
		t.Fatalf("expected nil create to store nothing, got %d entries", values.Len())
	}
	v, loaded, err = values.LoadOrStore("made", Adapter, func() (*node, error) { return kept, nil })
	if v != kept || loaded || err != nil {
		t.Fatalf("expected a later create to store, got %v loaded=%v err=%v", v, loaded, err)
	}

	m := NewIDMap[node](Options{})
	if m.ID(nil) != 0 || m.Len() != 0 {
		t.Fatalf("expected nil to have id 0")
	}
	runtime.KeepAlive(kept)
}

func queued[K comparable, V any](tb *table[K, V]) int {
	tb.queueMu.Lock()
	defer tb.queueMu.Unlock()
	return len(tb.queue)
}

func rePutTransient(c *IdentityCache[node, string]) string {
	key := newNode("transient")
	c.Put(key, "a", CanonicalClass)
	c.Put(key, "b", CanonicalClass)
	it := c.BeginIteration(CanonicalClass)
	c.Put(key, "c", CanonicalClass)
	it.Close()
	v, _ := c.Get(key)
	return v
}

func TestRePutKeepsOneCleanup(t *testing.T) {
	c := NewIdentity[node, string](Options{})
	if v := rePutTransient(c); v != "c" {
		t.Fatalf("expected the last replacement, got %q", v)
	}
	if c.t.gen != 1 {
		t.Fatalf("expected replacements to keep the first generation, got %d", c.t.gen)
	}
	eventually(t, func() bool { return queued(c.t) >= 1 })
	runtime.GC()
	time.Sleep(20 * time.Millisecond)
	if n := queued(c.t); n != 1 {
		t.Fatalf("expected one queued eviction for one key, got %d", n)
	}
	if c.Len() != 0 {
		t.Fatalf("expected the replaced entry to be evicted, got %d entries", c.Len())
	}

	values := NewWeakValues[string, node](Options{})
	kept, other := newNode("kept"), newNode("other")
	values.Put("k", kept, Adapter)
	values.Put("k", kept, Adapter)
	if values.t.gen != 1 {
		t.Fatalf("expected storing the same value to keep its generation, got %d", values.t.gen)
	}
	values.Put("k", other, Adapter)
	if values.t.gen != 2 {
		t.Fatalf("expected a new value to get a new generation, got %d", values.t.gen)
	}
	runtime.KeepAlive(kept)
	runtime.KeepAlive(other)
}
