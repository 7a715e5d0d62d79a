package entity

// Totals holds the derived monetary totals of a receipt.
// No rounding is applied; formatting is a presentation concern.
type Totals struct {
	Subtotal         float64 `json:"subtotal"`
	TotalWithholding float64 `json:"total_withholding"`
	GrandTotal       float64 `json:"grand_total"`
}

// ComputeTotals sums line totals and withholding in item order.
// GrandTotal is not clamped and may be negative.
func ComputeTotals(items []ReceiptLineItem) Totals {
	var t Totals
	for _, item := range items {
		t.Subtotal += item.LineTotal()
		t.TotalWithholding += item.WithholdingTax
	}
	t.GrandTotal = t.Subtotal - t.TotalWithholding
	return t
}

// RunningSubtotals returns the cumulative subtotal after each item.
func RunningSubtotals(items []ReceiptLineItem) []float64 {
	out := make([]float64, len(items))
	var sum float64
	for i, item := range items {
		sum += item.LineTotal()
		out[i] = sum
	}
	return out
}
