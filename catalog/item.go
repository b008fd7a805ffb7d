package catalog

import (
	"sort"
	"strings"
)

// Options is the variant selection step of a menu item.
type Options struct {
	Title   string   `json:"title" firestore:"title"`
	Choices []string `json:"choices" firestore:"choices"`
}

// Item is one menu entry as published by the document store.
// Values are snapshots; the catalog never mutates an Item it has handed out.
type Item struct {
	ID             string   `json:"id" firestore:"-"`
	Name           string   `json:"name" firestore:"name"`
	Description    string   `json:"description" firestore:"description"`
	Image          string   `json:"image" firestore:"image"`
	Category       string   `json:"category" firestore:"category"`
	Price          float64  `json:"price" firestore:"price"`
	OriginalPrice  *float64 `json:"originalPrice,omitempty" firestore:"originalPrice,omitempty"`
	Stock          int      `json:"stock" firestore:"stock"`
	MinQty         int      `json:"minQty" firestore:"minQty"`
	Unit           string   `json:"unit" firestore:"unit"`
	MixLimit       int      `json:"mixLimit,omitempty" firestore:"mixLimit,omitempty"`
	AllowDuplicate bool     `json:"allowDuplicate" firestore:"allowDuplicate"`
	IsAvailable    bool     `json:"isAvailable" firestore:"isAvailable"`
	Options        *Options `json:"options,omitempty" firestore:"options,omitempty"`
}

// Orderable reports whether the item can currently be added to a cart.
func (i Item) Orderable() bool {
	return i.IsAvailable && i.Stock > 0
}

// EffectiveMinQty treats a missing minimum as 1.
func (i Item) EffectiveMinQty() int {
	if i.MinQty < 1 {
		return 1
	}
	return i.MinQty
}

// HasOptions reports whether the item carries a variant selection step.
func (i Item) HasOptions() bool {
	return i.Options != nil && len(i.Options.Choices) > 0
}

// IsBundle reports whether the item is sold as a fixed-size mix.
func (i Item) IsBundle() bool {
	return i.MixLimit > 1
}

// HasChoice reports whether choice is one of the item's variant labels.
func (i Item) HasChoice(choice string) bool {
	if i.Options == nil {
		return false
	}
	for _, c := range i.Options.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hold it past the next snapshot.
func (i Item) Clone() Item {
	out := i
	if i.OriginalPrice != nil {
		p := *i.OriginalPrice
		out.OriginalPrice = &p
	}
	if i.Options != nil {
		out.Options = &Options{
			Title:   i.Options.Title,
			Choices: append([]string(nil), i.Options.Choices...),
		}
	}
	return out
}

// FieldErrors maps a field name to what is wrong with it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + f[k]
	}
	return strings.Join(parts, "; ")
}

// Validate checks the admin-side field rules. It returns FieldErrors or nil.
func (i Item) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(i.Name) == "" {
		errs["name"] = "is required"
	}
	if i.Price < 0 {
		errs["price"] = "must not be negative"
	}
	if i.OriginalPrice != nil && *i.OriginalPrice < 0 {
		errs["originalPrice"] = "must not be negative"
	}
	if i.MinQty < 1 {
		errs["minQty"] = "must be at least 1"
	}
	if i.Stock < 0 {
		errs["stock"] = "must not be negative"
	}
	if i.MixLimit < 0 || i.MixLimit == 1 {
		errs["mixLimit"] = "must be 0 or greater than 1"
	}
	if i.MixLimit > 1 && !i.HasOptions() {
		errs["options"] = "a mix bundle needs choices"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
