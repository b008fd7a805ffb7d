package planner

import (
	"fmt"
	"strings"

	"catering-backend/catalog"
)

// BuildPrompt renders the generation request for req over the available items.
func BuildPrompt(req Request, items []catalog.Item) string {
	var b strings.Builder

	b.WriteString("You are a catering planner for a bulk-order kitchen.\n")
	fmt.Fprintf(&b, "Plan food for %d guests", req.GuestCount)
	if req.EventType != "" {
		fmt.Fprintf(&b, " at a %s", req.EventType)
	}
	if req.BudgetTier != "" {
		fmt.Fprintf(&b, " on a %s budget", req.BudgetTier)
	}
	b.WriteString(".\n\nAvailable inventory:\n")

	for _, item := range items {
		fmt.Fprintf(&b, "- id: %s | name: %s | minQty: %d | price: %.2f | unit: %s | stock: %d",
			item.ID, item.Name, item.EffectiveMinQty(), item.Price, item.Unit, item.Stock)
		if item.HasOptions() {
			fmt.Fprintf(&b, " | options: %s", strings.Join(item.Options.Choices, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Rules:
1. Only use ids from the inventory above.
2. Each quantity must be at least the item's minQty and must not exceed its stock.
3. If an item has options, selectedOption must be exactly one of them; otherwise omit it.
4. Keep the selection balanced across mains, sides and desserts where possible.

Respond with JSON only, no prose and no markdown, in exactly this shape:
{"summary": "string", "items": [{"id": "string", "quantity": 1, "selectedOption": "string", "reason": "string"}]}
`)
	return b.String()
}
