package catalog

import (
	"context"
	"log"
	"sort"
	"sync"
)

// Snapshot is one push from a Source: the full collection, or a delivery error.
type Snapshot struct {
	Items []Item
	Err   error
}

// Source pushes full-collection snapshots whenever the backing store changes.
// The channel is closed when ctx is done or the subscription ends.
type Source interface {
	Subscribe(ctx context.Context) <-chan Snapshot
}

// Catalog is the read-only cached view of the menu.
type Catalog struct {
	mu      sync.RWMutex
	items   []Item
	byID    map[string]int
	version uint64
}

func New() *Catalog {
	return &Catalog{byID: make(map[string]int)}
}

// Replace swaps the whole view for snapshot. Order is kept as delivered.
func (c *Catalog) Replace(snapshot []Item) {
	items := make([]Item, len(snapshot))
	byID := make(map[string]int, len(snapshot))
	for i, item := range snapshot {
		items[i] = item.Clone()
		byID[item.ID] = i
	}

	c.mu.Lock()
	c.items = items
	c.byID = byID
	c.version++
	c.mu.Unlock()
}

// Lookup returns a copy of the item with the given id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[idx].Clone(), true
}

// All returns every item in the current view.
func (c *Catalog) All() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Item, len(c.items))
	for i, item := range c.items {
		out[i] = item.Clone()
	}
	return out
}

// Available returns the orderable subset of the current view.
func (c *Catalog) Available() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Item
	for _, item := range c.items {
		if item.Orderable() {
			out = append(out, item.Clone())
		}
	}
	return out
}

// ByCategory groups the current view by category name, categories sorted.
func (c *Catalog) ByCategory() map[string][]Item {
	groups := make(map[string][]Item)
	for _, item := range c.All() {
		groups[item.Category] = append(groups[item.Category], item)
	}
	for _, items := range groups {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	}
	return groups
}

// Version increments on every Replace.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Run applies snapshots from src until ctx is done or the source closes.
func (c *Catalog) Run(ctx context.Context, src Source) {
	updates := src.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				log.Println("Catalog subscription closed")
				return
			}
			if snap.Err != nil {
				log.Printf("Warning: catalog snapshot failed: %v", snap.Err)
				continue
			}
			c.Replace(snap.Items)
			log.Printf("Catalog updated: %d items", len(snap.Items))
		}
	}
}
