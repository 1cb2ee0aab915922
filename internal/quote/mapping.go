package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/greentech/qbo-push/internal/qbo"
)

// EstimatePayload maps the quote to a QuickBooks estimate for the given
// customer. Line items reference service items by name so QuickBooks can
// match or create them.
func (q *Quote) EstimatePayload(customerID string, now time.Time) *qbo.Estimate {
	lines := make([]qbo.Line, 0, len(q.Items))
	for i, item := range q.Items {
		var qty, price float64
		if item.Qty != nil {
			qty = float64(*item.Qty)
		}
		if item.UnitPrice != nil {
			price = float64(*item.UnitPrice)
		}
		lines = append(lines, qbo.Line{
			LineNum:     i + 1,
			Description: item.Description,
			DetailType:  "SalesItemLineDetail",
			Amount:      qty * price,
			SalesItemLineDetail: &qbo.SalesItemLineDetail{
				Qty:       qty,
				UnitPrice: price,
				ItemRef:   qbo.Ref{Name: item.Description},
			},
		})
	}

	est := &qbo.Estimate{
		CustomerRef: qbo.Ref{Value: customerID},
		CurrencyRef: &qbo.Ref{Value: q.CurrencyCode()},
		DocNumber:   q.Reference(),
		Line:        lines,
	}
	if q.Info.Date != "" {
		est.TxnDate = q.Info.Date
	}

	var memoParts []string
	if ref := q.Reference(); ref != "" {
		memoParts = append(memoParts, "Reference: "+ref)
	}
	if memo := q.Sustainability.Memo(); memo != "" {
		memoParts = append(memoParts, memo)
	}
	if len(memoParts) > 0 {
		est.CustomerMemo = &qbo.MemoRef{Value: strings.Join(memoParts, " | ")}
	}

	if q.Sustainability != nil {
		est.PrivateNote = fmt.Sprintf(
			"GreenTech Quote %s\nGenerated: %s\nSustainability metrics included in customer memo",
			q.Reference(), now.UTC().Format(time.RFC3339))
	}

	return est
}

// Memo formats the sustainability block into the customer-facing memo line.
// Zero-valued metrics are omitted; an empty block yields an empty string.
func (s *Sustainability) Memo() string {
	if s == nil {
		return ""
	}
	var parts []string
	if s.Trees > 0 {
		parts = append(parts, fmt.Sprintf("%v tree(s)", s.Trees))
	}
	if s.CO2Tons > 0 {
		parts = append(parts, fmt.Sprintf("%v tons CO2", s.CO2Tons))
	}
	if s.WaterLiters > 0 {
		parts = append(parts, fmt.Sprintf("%vL water saved", s.WaterLiters))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Environmental impact: " + strings.Join(parts, ", ")
}

// EstimateSummary is the condensed view of a created estimate, reported to
// the caller and the audit log.
type EstimateSummary struct {
	ID           string  `json:"id"`
	DocNumber    string  `json:"doc_number"`
	Total        float64 `json:"total"`
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Currency     string  `json:"currency"`
	TxnDate      string  `json:"txn_date,omitempty"`
	Status       string  `json:"status"`
}

// Summarize extracts the key fields from a QuickBooks estimate response.
func Summarize(e *qbo.Estimate) EstimateSummary {
	s := EstimateSummary{
		ID:           e.ID,
		DocNumber:    e.DocNumber,
		Total:        e.TotalAmt,
		CustomerID:   e.CustomerRef.Value,
		CustomerName: e.CustomerRef.Name,
		Currency:     "CAD",
		TxnDate:      e.TxnDate,
		Status:       e.TxnStatus,
	}
	if e.CurrencyRef != nil && e.CurrencyRef.Value != "" {
		s.Currency = e.CurrencyRef.Value
	}
	if s.Status == "" {
		s.Status = "Pending"
	}
	return s
}
