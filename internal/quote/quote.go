// Package quote parses and validates the JSON produced by the calculation
// engine and maps it to a QuickBooks estimate payload.
package quote

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Amount is a number that tolerates being quoted in the source JSON; the
// calculation engine's export sometimes emits "2" instead of 2.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*a = Amount(v)
	return nil
}

// Customer is the quote's customer section.
type Customer struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// Info carries the quote's own metadata.
type Info struct {
	Reference string `json:"reference"`
	Date      string `json:"date"`
}

// Item is one quoted line.
type Item struct {
	Description string  `json:"description"`
	Qty         *Amount `json:"qty"`
	UnitPrice   *Amount `json:"unit_price"`
}

// Sustainability is the environmental-impact block attached by the
// calculation engine.
type Sustainability struct {
	Trees       float64 `json:"trees"`
	CO2Tons     float64 `json:"co2_tons"`
	WaterLiters float64 `json:"water_liters"`
}

// Quote is the calculation engine's output document.
type Quote struct {
	Customer       *Customer       `json:"customer"`
	Info           Info            `json:"quote"`
	Items          []Item          `json:"items"`
	Sustainability *Sustainability `json:"sustainability"`
	Currency       string          `json:"currency"`
}

// Load reads and parses a quote JSON file.
func Load(path string) (*Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a quote document.
func Parse(data []byte) (*Quote, error) {
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to parse quote JSON: %w", err)
	}
	return &q, nil
}

// Validate checks the structure the push pipeline depends on.
func (q *Quote) Validate() error {
	if q.Customer == nil {
		return fmt.Errorf("missing 'customer' section")
	}
	if q.Customer.DisplayName == "" {
		return fmt.Errorf("customer display_name is required")
	}
	if len(q.Items) == 0 {
		return fmt.Errorf("no items in quote")
	}
	for i, item := range q.Items {
		if item.Description == "" {
			return fmt.Errorf("item %d: missing description", i)
		}
		if item.Qty == nil {
			return fmt.Errorf("item %d: missing qty", i)
		}
		if item.UnitPrice == nil {
			return fmt.Errorf("item %d: missing unit_price", i)
		}
	}
	return nil
}

// Reference returns the quote reference, or "NO-REF" when absent.
func (q *Quote) Reference() string {
	if q.Info.Reference == "" {
		return "NO-REF"
	}
	return q.Info.Reference
}

// CustomerName returns the customer display name, or a placeholder.
func (q *Quote) CustomerName() string {
	if q.Customer == nil || q.Customer.DisplayName == "" {
		return "Unknown Customer"
	}
	return q.Customer.DisplayName
}

// CurrencyCode returns the quote currency, defaulting to CAD.
func (q *Quote) CurrencyCode() string {
	if q.Currency == "" {
		return "CAD"
	}
	return q.Currency
}

// Subtotal sums qty * unit_price across all items.
func (q *Quote) Subtotal() float64 {
	var total float64
	for _, item := range q.Items {
		total += item.lineAmount()
	}
	return total
}

func (it Item) lineAmount() float64 {
	var qty, price float64
	if it.Qty != nil {
		qty = float64(*it.Qty)
	}
	if it.UnitPrice != nil {
		price = float64(*it.UnitPrice)
	}
	return qty * price
}
