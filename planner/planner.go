package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"catering-backend/cart"
	"catering-backend/catalog"
)

// ItemLookup resolves menu ids against the live catalog.
type ItemLookup interface {
	Lookup(id string) (catalog.Item, bool)
}

// Planner issues at most one generation request per session at a time.
type Planner struct {
	gen Generator

	mu       sync.Mutex
	inFlight map[string]bool
}

func New(gen Generator) *Planner {
	return &Planner{gen: gen, inFlight: make(map[string]bool)}
}

// Generate validates req, asks the model for a plan over available and parses
// the reply. A second call for the same session while one is outstanding
// returns ErrPlanInFlight without contacting the model.
func (p *Planner) Generate(ctx context.Context, session string, req Request, available []catalog.Item) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, ErrNoInventory
	}

	if !p.acquire(session) {
		return nil, ErrPlanInFlight
	}
	defer p.release(session)

	text, err := p.gen.Generate(ctx, BuildPrompt(req, available))
	if err != nil {
		log.Printf("Plan generation failed for session %s: %v", session, err)
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	plan, err := ParsePlan(text)
	if err != nil {
		log.Printf("Warning: unusable plan for session %s: %v", session, err)
		return nil, err
	}
	return plan, nil
}

// InFlight reports whether session has an outstanding request.
func (p *Planner) InFlight(session string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight[session]
}

func (p *Planner) acquire(session string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight[session] {
		return false
	}
	p.inFlight[session] = true
	return true
}

func (p *Planner) release(session string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, session)
}

// AcceptResult reports how much of a plan reached the cart.
type AcceptResult struct {
	Added   int      `json:"added"`
	Skipped []string `json:"skipped"`
}

var (
	errNotOrderable = errors.New("not available right now")
	errBadOption    = errors.New("option is not offered")
	errNeedsOption  = errors.New("an option is required")
	errNeedsMix     = errors.New("sold as a mix")
	errOverStock    = errors.New("quantity exceeds stock")
)

// checkLine applies the same rules as a direct add to the cart and returns
// the quantity to add.
func checkLine(item catalog.Item, rec PlanItem) (int, error) {
	if !item.Orderable() {
		return 0, errNotOrderable
	}
	if cart.NeedsMix(item, rec.SelectedOption) {
		return 0, errNeedsMix
	}
	if rec.SelectedOption != "" && !item.HasChoice(rec.SelectedOption) {
		return 0, errBadOption
	}
	if item.HasOptions() && rec.SelectedOption == "" {
		return 0, errNeedsOption
	}

	quantity := rec.Quantity
	if quantity <= 0 {
		quantity = item.EffectiveMinQty()
	}
	if quantity > item.Stock {
		return 0, errOverStock
	}
	return quantity, nil
}

// Accept adds each plan line that still names an orderable item to ledger.
// Lines for unknown items, unoffered or mix options, or more than the stock
// on hand are skipped. Quantities below the minimum are raised by the ledger.
func Accept(plan *Plan, items ItemLookup, ledger *cart.Ledger) AcceptResult {
	result := AcceptResult{Skipped: []string{}}
	if plan == nil {
		return result
	}
	for _, rec := range plan.Items {
		item, ok := items.Lookup(rec.ID)
		if !ok {
			result.Skipped = append(result.Skipped, rec.ID)
			continue
		}
		quantity, err := checkLine(item, rec)
		if err != nil {
			log.Printf("Skipping planned item %s: %v", rec.ID, err)
			result.Skipped = append(result.Skipped, rec.ID)
			continue
		}
		if _, err := ledger.AddToCart(item, quantity, rec.SelectedOption, nil); err != nil {
			log.Printf("Warning: could not add planned item %s: %v", rec.ID, err)
			result.Skipped = append(result.Skipped, rec.ID)
			continue
		}
		result.Added++
	}
	return result
}
