package cart

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"catering-backend/catalog"
)

// priceOverride matches an embedded price such as "Pepperoni ($15)" or "Large ($7.50)".
var priceOverride = regexp.MustCompile(`\$(\d+(?:\.\d+)?)`)

// ResolveUnitPrice returns the unit price for item with the given variant label.
// A label without a parseable "$<number>" override falls back to the item price.
func ResolveUnitPrice(item catalog.Item, selectedOption string) float64 {
	if selectedOption == "" {
		return item.Price
	}
	m := priceOverride.FindStringSubmatch(selectedOption)
	if m == nil {
		return item.Price
	}
	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsInf(price, 0) {
		return item.Price
	}
	return price
}

// CartIDFor is the ledger key for an item and its selected option.
func CartIDFor(itemID, selectedOption string) string {
	if selectedOption == "" {
		return itemID
	}
	return itemID + "-" + selectedOption
}

// FormatCurrency renders amount with thousands separators and two decimals,
// e.g. FormatCurrency(1234.5, "$") == "$1,234.50".
func FormatCurrency(amount float64, symbol string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	fixed := strconv.FormatFloat(math.Round(amount*100)/100, 'f', 2, 64)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + symbol + b.String() + "." + frac
}
