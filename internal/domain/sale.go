package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sale kinds. Orders share the sale shape but are not yet paid.
const (
	KindSale  = "sale"
	KindOrder = "order"
)

// LineItem is one product entry within a sale or order.
type LineItem struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	Brand          string `json:"brand,omitempty"`
}

// TotalCents returns unit price times quantity.
func (li LineItem) TotalCents() int64 {
	return li.UnitPriceCents * int64(li.Quantity)
}

// Sale belongs to exactly one customer and carries an ordered list of line items.
type Sale struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	CustomerID    string     `json:"customerId"`
	CustomerName  string     `json:"customerName,omitempty"`
	Brand         string     `json:"brand"`
	Source        string     `json:"source"`
	Province      string     `json:"province,omitempty"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod"`
	Notes         string     `json:"notes"`
	LineItems     []LineItem `json:"lineItems"`
	TotalCents    int64      `json:"totalCents"`
	SoldAt        time.Time  `json:"soldAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ComputeTotal sums the line items.
func (s Sale) ComputeTotal() int64 {
	var total int64
	for _, li := range s.LineItems {
		total += li.TotalCents()
	}
	return total
}

// CentsToDecimal converts an integer cent amount to a two-decimal amount.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DecimalToCents rounds an amount to whole cents.
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// ParseMoney reads amounts such as "$1,250.50" or "1250.5" into cents.
func ParseMoney(raw string) (int64, error) {
	cleaned := strings.NewReplacer("$", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, nil
	}
	if commaDecimal(cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidInput, raw)
	}
	return DecimalToCents(d), nil
}

// commaDecimal reports whether s writes its decimals after a comma, as in
// "1.250,50" or "12,5". A single comma followed by exactly three digits and
// no dot, as in "1,250", is read as a thousands separator.
func commaDecimal(s string) bool {
	comma := strings.LastIndex(s, ",")
	if comma < 0 || strings.Count(s, ",") > 1 || comma < strings.LastIndex(s, ".") {
		return false
	}
	if strings.Contains(s, ".") {
		return true
	}
	return len(s)-comma-1 != 3
}

// EncodeLineItems renders items in the legacy notes format, one item per line:
// "name | category | price | quantity | brand".
func EncodeLineItems(items []LineItem) string {
	lines := make([]string, 0, len(items))
	for _, li := range items {
		parts := []string{
			li.Name,
			li.Category,
			CentsToDecimal(li.UnitPriceCents).StringFixed(2),
			strconv.Itoa(li.Quantity),
		}
		if li.Brand != "" {
			parts = append(parts, li.Brand)
		}
		lines = append(lines, strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}

// "2x Remera - $12.50"
var shortLineItem = regexp.MustCompile(`^(\d+)\s*[xX]\s+(.+?)\s*-\s*\$?\s*([\d.,]+)$`)

// DecodeLineItems parses the legacy notes format. Lines in neither the pipe
// format nor the "Nx name - $price" form become a single unpriced item.
func DecodeLineItems(text string) []LineItem {
	var items []LineItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" {
			continue
		}
		if strings.Contains(line, "|") {
			items = append(items, decodePipeLine(line))
			continue
		}
		if m := shortLineItem.FindStringSubmatch(line); m != nil {
			qty, _ := strconv.Atoi(m[1])
			price, _ := ParseMoney(m[3])
			items = append(items, LineItem{Name: m[2], UnitPriceCents: price, Quantity: qty})
			continue
		}
		items = append(items, LineItem{Name: line, Quantity: 1})
	}
	return items
}

func decodePipeLine(line string) LineItem {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	get := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	li := LineItem{Name: get(0), Category: get(1), Brand: get(4), Quantity: 1}
	li.UnitPriceCents, _ = ParseMoney(get(2))
	if qty, err := strconv.Atoi(get(3)); err == nil && qty > 0 {
		li.Quantity = qty
	}
	return li
}
