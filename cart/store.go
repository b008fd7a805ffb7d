package cart

import "sync"

// KeyPrefix namespaces ledger slots in the key-value store.
const KeyPrefix = "catering_cart"

// StorageKey is the slot key for a cart session.
func StorageKey(session string) string {
	return KeyPrefix + ":" + session
}

// Store is the durable key-value slot a ledger serialises into.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// MemoryStore is a Store held in process.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = value
	return nil
}
