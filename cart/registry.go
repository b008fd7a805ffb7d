package cart

import (
	"hash/fnv"
	"sync"
)

const registryStripes = 64

// Registry opens session ledgers from a Store and serialises access per
// session, so mutations for one cart apply in the order they arrive.
type Registry struct {
	store Store
	locks [registryStripes]sync.Mutex
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// With runs fn against the ledger of session while holding its lock. When the
// slot cannot be read fn is not called and the error wraps ErrCartUnavailable.
func (r *Registry) With(session string, fn func(*Ledger) error) error {
	mu := r.lockFor(session)
	mu.Lock()
	defer mu.Unlock()

	l, err := Load(r.store, StorageKey(session))
	if err != nil {
		return err
	}
	return fn(l)
}

func (r *Registry) lockFor(session string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(session))
	return &r.locks[h.Sum32()%registryStripes]
}
