package cart

import (
	"errors"
	"fmt"
	"strings"

	"catering-backend/catalog"
)

var (
	ErrMixIncomplete = errors.New("mix selection is incomplete")
	ErrMixFull       = errors.New("mix selection is already full")
	ErrInvalidChoice = errors.New("choice is not offered for this item")
)

const mixPrefix = "Mixed: "

// RequiredCount is the number of sub-selections a bundle needs.
func RequiredCount(item catalog.Item) int {
	if item.MixLimit > 1 {
		return item.MixLimit
	}
	if item.MinQty > 1 {
		return item.MinQty
	}
	return 2
}

// IsMixSentinel reports whether choice is the "mix" placeholder that opens
// a mix session instead of being a literal variant.
func IsMixSentinel(choice string) bool {
	c := strings.ToLower(strings.TrimSpace(choice))
	return c == "mixed" || c == "mix"
}

// ComposableChoices returns the item's variant labels without sentinels.
func ComposableChoices(item catalog.Item) []string {
	if item.Options == nil {
		return nil
	}
	var out []string
	for _, c := range item.Options.Choices {
		if !IsMixSentinel(c) {
			out = append(out, c)
		}
	}
	return out
}

// NeedsMix reports whether adding item with selectedOption must go through a
// mix session rather than a direct add.
func NeedsMix(item catalog.Item, selectedOption string) bool {
	return item.IsBundle() || IsMixSentinel(selectedOption)
}

// MixSession is the uncommitted state of a bundle being assembled.
// Dropping a session has no effect on any ledger.
type MixSession struct {
	item       catalog.Item
	required   int
	choices    map[string]bool
	selections []string
}

func NewMixSession(item catalog.Item) *MixSession {
	choices := make(map[string]bool)
	for _, c := range ComposableChoices(item) {
		choices[c] = true
	}
	return &MixSession{
		item:     item.Clone(),
		required: RequiredCount(item),
		choices:  choices,
	}
}

// Add selects variant. Without duplicates, selecting an already chosen
// variant deselects it instead.
func (s *MixSession) Add(variant string) error {
	if !s.choices[variant] {
		return fmt.Errorf("%w: %q", ErrInvalidChoice, variant)
	}

	if !s.item.AllowDuplicate && s.Count(variant) > 0 {
		s.Remove(variant)
		return nil
	}
	if len(s.selections) >= s.required {
		return ErrMixFull
	}
	s.selections = append(s.selections, variant)
	return nil
}

// Remove drops one instance of variant. It reports whether anything was removed.
func (s *MixSession) Remove(variant string) bool {
	for i := len(s.selections) - 1; i >= 0; i-- {
		if s.selections[i] == variant {
			s.selections = append(s.selections[:i], s.selections[i+1:]...)
			return true
		}
	}
	return false
}

func (s *MixSession) Count(variant string) int {
	n := 0
	for _, v := range s.selections {
		if v == variant {
			n++
		}
	}
	return n
}

func (s *MixSession) Selections() []string {
	return append([]string(nil), s.selections...)
}

func (s *MixSession) Required() int  { return s.required }
func (s *MixSession) Remaining() int { return s.required - len(s.selections) }
func (s *MixSession) Ready() bool    { return len(s.selections) == s.required }

// Compose reduces a ready session to a single line.
func (s *MixSession) Compose(quantity int) (Composition, error) {
	if !s.Ready() {
		return Composition{}, fmt.Errorf("%w: %d of %d chosen", ErrMixIncomplete, len(s.selections), s.required)
	}
	return Compose(s.item, s.selections, quantity), nil
}

// Composition is a bundle reduced to one priced line, ready for the ledger.
type Composition struct {
	Item      catalog.Item
	Label     string
	UnitPrice float64
	Quantity  int
}

// Compose builds the display label and the mean unit price of selections.
// Duplicates weight the mean. selections must not be empty.
func Compose(item catalog.Item, selections []string, quantity int) Composition {
	counts := make(map[string]int)
	var order []string
	var sum float64
	for _, v := range selections {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
		sum += ResolveUnitPrice(item, v)
	}

	parts := make([]string, 0, len(order))
	for _, v := range order {
		if n := counts[v]; n > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", n, v))
		} else {
			parts = append(parts, v)
		}
	}

	var mean float64
	if len(selections) > 0 {
		mean = sum / float64(len(selections))
	}

	return Composition{
		Item:      item,
		Label:     mixPrefix + strings.Join(parts, ", "),
		UnitPrice: mean,
		Quantity:  quantity,
	}
}

// CommitTo adds the composition to l as a single line.
func (c Composition) CommitTo(l *Ledger) (Notice, error) {
	price := c.UnitPrice
	return l.AddToCart(c.Item, c.Quantity, c.Label, &price)
}
