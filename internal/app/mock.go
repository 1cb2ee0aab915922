package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/greentech/qbo-push/internal/quote"
)

// writeMockEstimate renders a plain-text stand-in for the PDF QuickBooks
// would generate, named the way the live pipeline names real PDFs.
func writeMockEstimate(q *quote.Quote, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("GreenTech Painting - Estimate (MOCK)\n")
	fmt.Fprintf(&b, "Reference: %s\n", q.Reference())
	fmt.Fprintf(&b, "Customer: %s\n", q.CustomerName())
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, item := range q.Items {
		var qty, price float64
		if item.Qty != nil {
			qty = float64(*item.Qty)
		}
		if item.UnitPrice != nil {
			price = float64(*item.UnitPrice)
		}
		fmt.Fprintf(&b, "%s  x%v   $%.2f\n", item.Description, qty, price)
	}
	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "Subtotal: %s $%.2f\n", q.CurrencyCode(), q.Subtotal())

	path := filepath.Join(outDir, fmt.Sprintf("Estimate_%s.pdf", q.Reference()))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write mock estimate: %w", err)
	}
	return path, nil
}
