package weakcache

// Cache maps keys to strongly held values. It shares the sweep and stable
// iteration machinery of the weak caches.
type Cache[K comparable, V any] struct {
	t *table[K, V]
}

func New[K comparable, V any](opts Options) *Cache[K, V] {
	return &Cache[K, V]{t: newTable[K, V](opts, nil)}
}

func (c *Cache[K, V]) Get(key K) (V, bool) { return c.t.get(key) }

func (c *Cache[K, V]) Put(key K, value V, category Category) { c.t.put(key, value, category, nil) }

// LoadOrStore returns the cached value or stores the result of create.
// create runs under the cache lock and must not call back into c.
func (c *Cache[K, V]) LoadOrStore(key K, category Category, create func() (V, error)) (V, bool, error) {
	v, loaded, _, err := c.t.loadOrStore(key, category, create)
	return v, loaded, err
}

func (c *Cache[K, V]) Remove(key K) bool { return c.t.remove(key) }

func (c *Cache[K, V]) Len() int { return c.t.length() }

// Sweep drains pending evictions and reports how many entries went.
func (c *Cache[K, V]) Sweep() int { return c.t.sweep() }

func (c *Cache[K, V]) Clear() { c.t.clear() }

// BeginIteration enumerates one category. Until Close, evictions and puts
// are deferred.
func (c *Cache[K, V]) BeginIteration(category Category) *Iteration[K, V] {
	cur := c.t.begin(category)
	return &Iteration[K, V]{next: cur.next, remove: cur.removeCurrent, close: cur.close}
}

// Range calls fn for each live entry of category until fn returns false.
func (c *Cache[K, V]) Range(category Category, fn func(K, V) bool) {
	rangeOver(c.BeginIteration(category), fn)
}

// Iteration is an in-progress enumeration. Entries whose referents are gone
// are skipped.
type Iteration[K any, V any] struct {
	next   func() (K, V, bool)
	remove func() bool
	close  func()
}

func (it *Iteration[K, V]) Next() (K, V, bool) { return it.next() }

// Remove deletes the entry last returned by Next.
func (it *Iteration[K, V]) Remove() bool { return it.remove() }

// Close ends stable mode. It is safe to call more than once.
func (it *Iteration[K, V]) Close() { it.close() }

func rangeOver[K any, V any](it *Iteration[K, V], fn func(K, V) bool) {
	defer it.Close()
	for {
		k, v, ok := it.Next()
		if !ok || !fn(k, v) {
			return
		}
	}
}
