package weakcache

import (
	"errors"
	"runtime"
	"weak"
)

// ErrNilKey is returned when nil is offered as an identity key.
var ErrNilKey = errors.New("weakcache: nil key")

// errNoValue stops a weak-value store when create produced nothing.
var errNoValue = errors.New("weakcache: no value")

// IdentityCache is keyed by object identity without keeping keys alive.
// Values are held strongly and must not reference their key, or the key
// will never be collected.
type IdentityCache[T any, V any] struct {
	t *table[weak.Pointer[T], V]
}

func NewIdentity[T any, V any](opts Options) *IdentityCache[T, V] {
	live := func(k weak.Pointer[T], _ V) bool { return k.Value() != nil }
	return &IdentityCache[T, V]{t: newTable[weak.Pointer[T], V](opts, live)}
}

func (c *IdentityCache[T, V]) Get(key *T) (V, bool) {
	if key == nil {
		var zero V
		return zero, false
	}
	return c.t.get(weak.Make(key))
}

// Put stores value under key, replacing any cached value. A nil key is
// ignored.
func (c *IdentityCache[T, V]) Put(key *T, value V, category Category) {
	if key == nil {
		return
	}
	wk := weak.Make(key)
	// a live key already has its cleanup attached
	gen, fresh := c.t.put(wk, value, category, func(V) bool { return true })
	if fresh {
		c.watch(key, wk, gen)
	}
}

// LoadOrStore returns the cached value for key or stores create's result.
func (c *IdentityCache[T, V]) LoadOrStore(key *T, category Category, create func() (V, error)) (V, bool, error) {
	if key == nil {
		var zero V
		return zero, false, ErrNilKey
	}
	wk := weak.Make(key)
	v, loaded, gen, err := c.t.loadOrStore(wk, category, create)
	if err == nil && !loaded {
		c.watch(key, wk, gen)
	}
	return v, loaded, err
}

func (c *IdentityCache[T, V]) watch(key *T, wk weak.Pointer[T], gen uint64) {
	runtime.AddCleanup(key, c.t.enqueue, eviction[weak.Pointer[T]]{key: wk, gen: gen})
}

func (c *IdentityCache[T, V]) Remove(key *T) bool {
	if key == nil {
		return false
	}
	return c.t.remove(weak.Make(key))
}

func (c *IdentityCache[T, V]) Len() int { return c.t.length() }

func (c *IdentityCache[T, V]) Sweep() int { return c.t.sweep() }

func (c *IdentityCache[T, V]) Clear() { c.t.clear() }

func (c *IdentityCache[T, V]) BeginIteration(category Category) *Iteration[*T, V] {
	cur := c.t.begin(category)
	next := func() (*T, V, bool) {
		for {
			wk, v, ok := cur.next()
			if !ok {
				return nil, v, false
			}
			if key := wk.Value(); key != nil {
				return key, v, true
			}
		}
	}
	return &Iteration[*T, V]{next: next, remove: cur.removeCurrent, close: cur.close}
}

func (c *IdentityCache[T, V]) Range(category Category, fn func(*T, V) bool) {
	rangeOver(c.BeginIteration(category), fn)
}

// WeakValueCache holds its values weakly; an entry lives as long as
// something else references the value.
type WeakValueCache[K comparable, T any] struct {
	t *table[K, weak.Pointer[T]]
}

func NewWeakValues[K comparable, T any](opts Options) *WeakValueCache[K, T] {
	live := func(_ K, v weak.Pointer[T]) bool { return v.Value() != nil }
	return &WeakValueCache[K, T]{t: newTable[K, weak.Pointer[T]](opts, live)}
}

func (c *WeakValueCache[K, T]) Get(key K) (*T, bool) {
	wv, ok := c.t.get(key)
	if !ok {
		return nil, false
	}
	v := wv.Value()
	return v, v != nil
}

// Put stores value under key. A nil value is never cached: it drops
// whatever key held, so a later Get misses.
func (c *WeakValueCache[K, T]) Put(key K, value *T, category Category) {
	if value == nil {
		c.t.remove(key)
		return
	}
	wv := weak.Make(value)
	gen, fresh := c.t.put(key, wv, category, func(old weak.Pointer[T]) bool { return old == wv })
	if fresh {
		runtime.AddCleanup(value, c.t.enqueue, eviction[K]{key: key, gen: gen})
	}
}

// LoadOrStore returns the live value under key or stores create's result.
// When create returns nil nothing is stored and the result is a miss.
func (c *WeakValueCache[K, T]) LoadOrStore(key K, category Category, create func() (*T, error)) (*T, bool, error) {
	// keeps a freshly created value alive until its cleanup is attached
	var fresh *T
	wv, loaded, gen, err := c.t.loadOrStore(key, category, func() (weak.Pointer[T], error) {
		v, err := create()
		if err != nil {
			return weak.Pointer[T]{}, err
		}
		if v == nil {
			return weak.Pointer[T]{}, errNoValue
		}
		fresh = v
		return weak.Make(v), nil
	})
	if errors.Is(err, errNoValue) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !loaded {
		runtime.AddCleanup(fresh, c.t.enqueue, eviction[K]{key: key, gen: gen})
		return fresh, false, nil
	}
	if v := wv.Value(); v != nil {
		return v, true, nil
	}
	return c.LoadOrStore(key, category, create)
}

func (c *WeakValueCache[K, T]) Remove(key K) bool { return c.t.remove(key) }

func (c *WeakValueCache[K, T]) Len() int { return c.t.length() }

func (c *WeakValueCache[K, T]) Sweep() int { return c.t.sweep() }

func (c *WeakValueCache[K, T]) BeginIteration(category Category) *Iteration[K, *T] {
	cur := c.t.begin(category)
	next := func() (K, *T, bool) {
		for {
			k, wv, ok := cur.next()
			if !ok {
				return k, nil, false
			}
			if v := wv.Value(); v != nil {
				return k, v, true
			}
		}
	}
	return &Iteration[K, *T]{next: next, remove: cur.removeCurrent, close: cur.close}
}

func (c *WeakValueCache[K, T]) Range(category Category, fn func(K, *T) bool) {
	rangeOver(c.BeginIteration(category), fn)
}
