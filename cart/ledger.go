package cart

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"catering-backend/catalog"
)

// LineItem is one entry in a ledger. Display fields are snapshots taken
// when the line was created.
type LineItem struct {
	CartID         string  `json:"cartId"`
	ItemID         string  `json:"id"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	Unit           string  `json:"unit"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	MinQty         int     `json:"minQty"`
	SelectedOption string  `json:"selectedOption,omitempty"`
}

func (l LineItem) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

type NoticeKind string

const (
	NoticeAdded   NoticeKind = "added"
	NoticeUpdated NoticeKind = "updated"
)

// Notice tells the caller whether an add created or merged a line.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Line LineItem   `json:"line"`
}

func (n Notice) Message() string {
	if n.Kind == NoticeUpdated {
		return fmt.Sprintf("Updated %s in cart", n.Line.Name)
	}
	return fmt.Sprintf("Added %s to cart", n.Line.Name)
}

// Ledger is an ordered set of line items keyed by cart id. Every successful
// mutation is written back to its Store slot before returning.
type Ledger struct {
	mu    sync.Mutex
	store Store
	key   string
	lines []LineItem
	index map[string]int

	persistErr error
}

// Open restores the ledger saved under key. Missing or malformed data
// yields an empty ledger, and so does a failed read. Callers that write back
// to a shared store should use Load instead.
func Open(store Store, key string) *Ledger {
	l, err := Load(store, key)
	if err != nil {
		log.Printf("Warning: %v", err)
		return &Ledger{store: store, key: key, index: make(map[string]int)}
	}
	return l
}

// Load is Open without the fallback for read failures. A store error is
// returned wrapped in ErrCartUnavailable and no ledger is built, so nothing
// can overwrite the saved slot.
func Load(store Store, key string) (*Ledger, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCartUnavailable, key, err)
	}

	l := &Ledger{store: store, key: key, index: make(map[string]int)}
	if !ok || raw == "" {
		return l, nil
	}

	lines, err := decodeLines(raw)
	if err != nil {
		log.Printf("Warning: discarding unreadable cart %s: %v", key, err)
		return l, nil
	}
	for _, line := range lines {
		l.index[line.CartID] = len(l.lines)
		l.lines = append(l.lines, line)
	}
	return l, nil
}

func decodeLines(raw string) ([]LineItem, error) {
	var lines []LineItem
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		switch {
		case line.CartID == "":
			return nil, fmt.Errorf("line without cart id")
		case seen[line.CartID]:
			return nil, fmt.Errorf("duplicate cart id %q", line.CartID)
		case line.Quantity < 1 || line.Price < 0:
			return nil, fmt.Errorf("invalid line %q", line.CartID)
		}
		seen[line.CartID] = true
	}
	return lines, nil
}

// AddToCart merges quantity into the line for (item, selectedOption), creating
// it if needed. A quantity of zero or less means the item's minimum. The
// stored price becomes customPrice when given, else the resolved unit price.
// Stock is not checked here.
func (l *Ledger) AddToCart(item catalog.Item, quantity int, selectedOption string, customPrice *float64) (Notice, error) {
	if item.ID == "" {
		return Notice{}, ErrMissingItemID
	}
	if customPrice != nil && *customPrice < 0 {
		return Notice{}, ErrNegativePrice
	}

	minQty := item.EffectiveMinQty()
	if quantity <= 0 {
		quantity = minQty
	}
	price := ResolveUnitPrice(item, selectedOption)
	if customPrice != nil {
		price = *customPrice
	}
	cartID := CartIDFor(item.ID, selectedOption)

	l.mu.Lock()
	defer l.mu.Unlock()

	if idx, ok := l.index[cartID]; ok {
		line := &l.lines[idx]
		line.Quantity += quantity
		line.Price = price
		l.persistLocked()
		return Notice{Kind: NoticeUpdated, Line: *line}, nil
	}

	if quantity < minQty {
		quantity = minQty
	}
	line := LineItem{
		CartID:         cartID,
		ItemID:         item.ID,
		Name:           item.Name,
		Image:          item.Image,
		Unit:           item.Unit,
		Price:          price,
		Quantity:       quantity,
		MinQty:         minQty,
		SelectedOption: selectedOption,
	}
	l.index[cartID] = len(l.lines)
	l.lines = append(l.lines, line)
	l.persistLocked()
	return Notice{Kind: NoticeAdded, Line: line}, nil
}

// UpdateQuantity applies delta to a line. An unknown cart id is a no-op.
// A result below the line's minimum returns *MinQuantityError.
func (l *Ledger) UpdateQuantity(cartID string, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.index[cartID]
	if !ok {
		return nil
	}
	line := &l.lines[idx]
	next := line.Quantity + delta
	if next < line.MinQty {
		return &MinQuantityError{CartID: cartID, MinQty: line.MinQty, Unit: line.Unit}
	}
	line.Quantity = next
	l.persistLocked()
	return nil
}

// Remove deletes a line if present.
func (l *Ledger) Remove(cartID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.index[cartID]
	if !ok {
		return
	}
	l.lines = append(l.lines[:idx], l.lines[idx+1:]...)
	l.reindexLocked()
	l.persistLocked()
}

// Clear empties the ledger once the caller has obtained confirmation.
func (l *Ledger) Clear(confirmed bool) error {
	if !confirmed {
		return ErrClearNotConfirmed
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = nil
	l.index = make(map[string]int)
	l.persistLocked()
	return nil
}

// Line returns the line stored under cartID.
func (l *Ledger) Line(cartID string) (LineItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.index[cartID]
	if !ok {
		return LineItem{}, false
	}
	return l.lines[idx], true
}

// Items returns the lines in insertion order.
func (l *Ledger) Items() []LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LineItem(nil), l.lines...)
}

// Total is the sum of price times quantity over all lines.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, line := range l.lines {
		total += line.Subtotal()
	}
	return total
}

// Count is the sum of quantities over all lines.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

func (l *Ledger) reindexLocked() {
	l.index = make(map[string]int, len(l.lines))
	for i, line := range l.lines {
		l.index[line.CartID] = i
	}
}

// PersistErr reports the outcome of the most recent write to the store.
func (l *Ledger) PersistErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persistErr
}

// persistLocked writes the ledger to its slot. A failed write leaves the
// in-memory ledger as is; the durable copy catches up on the next mutation.
func (l *Ledger) persistLocked() {
	lines := l.lines
	if lines == nil {
		lines = []LineItem{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		log.Printf("Warning: failed to encode cart %s: %v", l.key, err)
		l.persistErr = err
		return
	}
	if err := l.store.Set(l.key, string(data)); err != nil {
		log.Printf("Warning: failed to save cart %s: %v", l.key, err)
		l.persistErr = fmt.Errorf("save cart: %w", err)
		return
	}
	l.persistErr = nil
}
