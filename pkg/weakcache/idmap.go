package weakcache

import "sync"

// IDMap assigns increasing numeric ids to live objects. The same live
// object always gets the same id and ids are never handed out twice.
type IDMap[T any] struct {
	ids *IdentityCache[T, uint64]

	mu   sync.Mutex
	last uint64
}

func NewIDMap[T any](opts Options) *IDMap[T] {
	return &IDMap[T]{ids: NewIdentity[T, uint64](opts)}
}

// ID returns obj's id, assigning the next one on first sight. A nil obj
// has id 0, which is never assigned.
func (m *IDMap[T]) ID(obj *T) uint64 {
	if obj == nil {
		return 0
	}
	id, _, _ := m.ids.LoadOrStore(obj, Adapter, func() (uint64, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.last++
		return m.last, nil
	})
	return id
}

// Lookup reports the id of obj without assigning one.
func (m *IDMap[T]) Lookup(obj *T) (uint64, bool) {
	return m.ids.Get(obj)
}

// Len is the number of live objects with an id.
func (m *IDMap[T]) Len() int { return m.ids.Len() }
