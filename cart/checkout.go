package cart

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Customer is the contact block appended to an order message.
type Customer struct {
	Name      string `json:"name" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=40"`
	EventDate string `json:"event_date" binding:"max=40"`
	Notes     string `json:"notes" binding:"max=1000"`
}

// FormatOrderMessage renders lines and total as the plain-text order sent to
// the caterer.
func FormatOrderMessage(lines []LineItem, total float64, customer Customer, symbol string) string {
	var b strings.Builder
	b.WriteString("New catering order\n\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "%d x %s", line.Quantity, line.Name)
		if line.SelectedOption != "" {
			fmt.Fprintf(&b, " (%s)", line.SelectedOption)
		}
		fmt.Fprintf(&b, " - %s\n", FormatCurrency(line.Subtotal(), symbol))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", FormatCurrency(total, symbol))

	if customer.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", customer.Name)
	}
	if customer.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", customer.Phone)
	}
	if customer.EventDate != "" {
		fmt.Fprintf(&b, "Event date: %s\n", customer.EventDate)
	}
	if customer.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", customer.Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

var nonDigits = regexp.MustCompile(`\D`)

// WhatsAppURL builds a click-to-chat link carrying message.
func WhatsAppURL(number, message string) string {
	q := url.Values{}
	q.Set("text", message)
	return "https://wa.me/" + nonDigits.ReplaceAllString(number, "") + "?" + q.Encode()
}
