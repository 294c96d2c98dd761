// Package weakcache provides caches whose entries disappear once their key
// or value is garbage collected. Collected referents are queued by cleanup
// hooks and swept at the start of every public operation.
package weakcache

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Category tags entries so one cache can be enumerated per kind.
type Category int

const (
	CanonicalClass Category = iota
	LazyClass
	AdapterClass
	Adapter
)

func (c Category) String() string {
	switch c {
	case CanonicalClass:
		return "canonical"
	case LazyClass:
		return "lazy"
	case AdapterClass:
		return "adapter-class"
	case Adapter:
		return "adapter"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Options tune a cache.
type Options struct {
	// Name labels log output.
	Name string
	// TraceEvictions logs every sweep that removed entries.
	TraceEvictions bool
}

type entry[V any] struct {
	value    V
	category Category
	gen      uint64
}

type eviction[K comparable] struct {
	key K
	gen uint64
}

// table is the engine behind every cache type. live reports whether an
// entry's referents still exist; nil means entries are always live.
type table[K comparable, V any] struct {
	opts Options
	live func(K, V) bool

	mu      sync.Mutex
	entries map[K]*entry[V]
	// pending holds puts made while an iteration keeps the table stable.
	pending map[K]*entry[V]
	stable  int
	gen     uint64

	queueMu sync.Mutex
	queue   []eviction[K]
}

func newTable[K comparable, V any](opts Options, live func(K, V) bool) *table[K, V] {
	return &table[K, V]{
		opts:    opts,
		live:    live,
		entries: map[K]*entry[V]{},
		pending: map[K]*entry[V]{},
	}
}

// enqueue is called from cleanup hooks.
func (t *table[K, V]) enqueue(ev eviction[K]) {
	t.queueMu.Lock()
	t.queue = append(t.queue, ev)
	t.queueMu.Unlock()
}

// sweepLocked drains the eviction queue. Stable tables keep the queue for
// later. t.mu must be held.
func (t *table[K, V]) sweepLocked() int {
	if t.stable > 0 {
		return 0
	}
	t.queueMu.Lock()
	queue := t.queue
	t.queue = nil
	t.queueMu.Unlock()

	removed := 0
	for _, ev := range queue {
		if e, ok := t.entries[ev.key]; ok && e.gen == ev.gen {
			delete(t.entries, ev.key)
			removed++
		}
	}
	if removed > 0 && t.opts.TraceEvictions {
		log.Trace().Str("cache", t.opts.Name).Int("evicted", removed).Int("remaining", len(t.entries)).Msg("cache sweep")
	}
	return removed
}

func (t *table[K, V]) isLive(key K, e *entry[V]) bool {
	return t.live == nil || t.live(key, e.value)
}

func (t *table[K, V]) lookupLocked(key K) (*entry[V], bool) {
	if e, ok := t.pending[key]; ok {
		return e, true
	}
	e, ok := t.entries[key]
	return e, ok
}

func (t *table[K, V]) get(key K) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	e, ok := t.lookupLocked(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !t.isLive(key, e) {
		t.dropLocked(key, e)
		var zero V
		return zero, false
	}
	return e.value, true
}

// dropLocked removes a dead entry unless the table is stable.
func (t *table[K, V]) dropLocked(key K, e *entry[V]) {
	if t.stable > 0 {
		return
	}
	if cur, ok := t.entries[key]; ok && cur == e {
		delete(t.entries, key)
	}
}

// put stores value under key. A live entry for which keep reports true
// hands its generation to the new value, so the cleanup already attached
// for it still evicts the replacement; fresh is false in that case.
func (t *table[K, V]) put(key K, value V, category Category, keep func(old V) bool) (gen uint64, fresh bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	if e, ok := t.lookupLocked(key); ok && t.isLive(key, e) && keep != nil && keep(e.value) {
		t.placeLocked(key, &entry[V]{value: value, category: category, gen: e.gen})
		return e.gen, false
	}
	return t.storeLocked(key, value, category), true
}

func (t *table[K, V]) storeLocked(key K, value V, category Category) uint64 {
	t.gen++
	e := &entry[V]{value: value, category: category, gen: t.gen}
	t.placeLocked(key, e)
	return e.gen
}

func (t *table[K, V]) placeLocked(key K, e *entry[V]) {
	if t.stable > 0 {
		t.pending[key] = e
	} else {
		t.entries[key] = e
	}
}

// loadOrStore returns the live value under key or stores create's result.
// gen is nonzero only when a value was stored.
func (t *table[K, V]) loadOrStore(key K, category Category, create func() (V, error)) (value V, loaded bool, gen uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	if e, ok := t.lookupLocked(key); ok && t.isLive(key, e) {
		return e.value, true, 0, nil
	}
	value, err = create()
	if err != nil {
		var zero V
		return zero, false, 0, err
	}
	return value, false, t.storeLocked(key, value, category), nil
}

func (t *table[K, V]) remove(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	_, inPending := t.pending[key]
	_, inEntries := t.entries[key]
	delete(t.pending, key)
	delete(t.entries, key)
	return inPending || inEntries
}

func (t *table[K, V]) length() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	n := 0
	for key, e := range t.entries {
		if _, shadowed := t.pending[key]; !shadowed && t.isLive(key, e) {
			n++
		}
	}
	for key, e := range t.pending {
		if t.isLive(key, e) {
			n++
		}
	}
	return n
}

func (t *table[K, V]) sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sweepLocked()
}

func (t *table[K, V]) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	clear(t.entries)
	clear(t.pending)
}

func (t *table[K, V]) begin(category Category) *cursor[K, V] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	t.stable++
	keys := make([]K, 0, len(t.entries))
	for key, e := range t.entries {
		if e.category == category {
			keys = append(keys, key)
		}
	}
	return &cursor[K, V]{t: t, category: category, keys: keys}
}

func (t *table[K, V]) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stable--
	if t.stable > 0 {
		return
	}
	for key, e := range t.pending {
		t.entries[key] = e
	}
	clear(t.pending)
	t.sweepLocked()
}

// cursor walks a snapshot of keys while the table is stable.
type cursor[K comparable, V any] struct {
	t        *table[K, V]
	category Category
	keys     []K
	pos      int
	current  *K
	closed   bool
}

func (c *cursor[K, V]) next() (K, V, bool) {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	for !c.closed && c.pos < len(c.keys) {
		key := c.keys[c.pos]
		c.pos++
		e, ok := c.t.entries[key]
		if !ok || e.category != c.category || !c.t.isLive(key, e) {
			continue
		}
		c.current = &key
		return key, e.value, true
	}
	c.current = nil
	var (
		zeroK K
		zeroV V
	)
	return zeroK, zeroV, false
}

func (c *cursor[K, V]) removeCurrent() bool {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	if c.current == nil {
		return false
	}
	key := *c.current
	c.current = nil
	_, ok := c.t.entries[key]
	delete(c.t.entries, key)
	return ok
}

func (c *cursor[K, V]) close() {
	c.t.mu.Lock()
	if c.closed {
		c.t.mu.Unlock()
		return
	}
	c.closed = true
	c.t.mu.Unlock()
	c.t.end()
}
