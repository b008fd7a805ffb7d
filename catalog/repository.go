package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("menu item not found")

// Repository is the admin write path into the document store.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id string) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) error
	Delete(ctx context.Context, id string) error
}

// MemoryRepository keeps the menu in process and pushes a snapshot to
// subscribers after every write. Used for local runs and tests.
type MemoryRepository struct {
	mu     sync.Mutex
	order  []string
	items  map[string]Item
	subs   map[int]chan Snapshot
	nextID int
}

func NewMemoryRepository(seed ...Item) *MemoryRepository {
	r := &MemoryRepository{
		items: make(map[string]Item),
		subs:  make(map[int]chan Snapshot),
	}
	for _, item := range seed {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		r.order = append(r.order, item.ID)
		r.items[item.ID] = item.Clone()
	}
	return r
}

func (r *MemoryRepository) List(ctx context.Context) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return item.Clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if _, exists := r.items[item.ID]; !exists {
		r.order = append(r.order, item.ID)
	}
	r.items[item.ID] = item.Clone()
	r.broadcastLocked()
	return item, nil
}

func (r *MemoryRepository) Update(ctx context.Context, item Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return ErrNotFound
	}
	r.items[item.ID] = item.Clone()
	r.broadcastLocked()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.broadcastLocked()
	return nil
}

// Subscribe delivers the current menu immediately, then one snapshot per write.
// A slow subscriber only ever sees the latest snapshot.
func (r *MemoryRepository) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	ch <- Snapshot{Items: r.snapshotLocked()}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.subs, id)
		close(ch)
		r.mu.Unlock()
	}()

	return ch
}

func (r *MemoryRepository) snapshotLocked() []Item {
	out := make([]Item, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out
}

func (r *MemoryRepository) broadcastLocked() {
	snap := Snapshot{Items: r.snapshotLocked()}
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
