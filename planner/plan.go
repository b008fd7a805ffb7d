package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidGuestCount = errors.New("guest count must be a positive number")
	ErrNoInventory       = errors.New("no menu items are currently available")
	ErrPlanInFlight      = errors.New("a plan is already being generated")
	ErrUnusablePlan      = errors.New("could not read the generated plan, please try again")
)

// Request carries the customer's constraints for a plan.
type Request struct {
	GuestCount int    `json:"guest_count"`
	EventType  string `json:"event_type"`
	BudgetTier string `json:"budget_tier"`
}

func (r Request) Validate() error {
	if r.GuestCount < 1 {
		return ErrInvalidGuestCount
	}
	return nil
}

// PlanItem is one recommended cart line.
type PlanItem struct {
	ID             string `json:"id"`
	Quantity       int    `json:"quantity"`
	SelectedOption string `json:"selectedOption,omitempty"`
	Reason         string `json:"reason"`
}

// Plan is the parsed model output.
type Plan struct {
	Summary string     `json:"summary"`
	Items   []PlanItem `json:"items"`
}

// ParsePlan reads a plan from raw model text. Code fences and any prose
// around the outermost JSON object are ignored.
func ParsePlan(text string) (*Plan, error) {
	cleaned := cleanResponse(text)
	if cleaned == "" {
		return nil, ErrUnusablePlan
	}

	var plan Plan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusablePlan, err)
	}
	if len(plan.Items) == 0 {
		return nil, ErrUnusablePlan
	}
	return &plan, nil
}

func cleanResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return response[start : end+1]
}
